//go:build !opencv

package imaging

// morphEx is only available with the "opencv" build tag.
func morphEx(m *Mask, k Kernel, op morphOp) (*Mask, bool) {
	return nil, false
}
