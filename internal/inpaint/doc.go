// Package inpaint reconstructs masked pixels of an image.
//
// Two reconstruction modes are provided:
//
//   - Inpainting: masked pixels are synthesized from their unmasked
//     surroundings by a named Inpainter. The Reconstructor runs a primary
//     inpainter and, if it fails, a single fallback.
//   - Direct fill: masked pixels are overwritten with a fixed color or the
//     dominant color of the area around each box.
//
// # Inpainters
//
//   - "fast-march": peels the masked area layer by layer from its boundary,
//     filling each pixel with a distance-weighted average of the known
//     pixels around it.
//   - "diffusion": starts from the fast-march result and relaxes the masked
//     pixels towards a smooth (harmonic) surface until the largest change in
//     an iteration falls below a tolerance.
//
// # Locality
//
// Pixels outside the mask are never written: whatever an inpainter returns,
// the Reconstructor copies only masked pixels into the result.
package inpaint
