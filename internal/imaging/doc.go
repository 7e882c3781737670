// Package imaging provides the pixel buffers and per-pixel stages of the lane
// detection pipeline.
//
// The stages run in a fixed order, each consuming the previous stage's full
// output and allocating a new image:
//
//  1. Grayscale: RGB -> luminance using ITU-R BT.601 weights
//     (0.299*R + 0.587*G + 0.114*B)
//  2. GaussianBlur: k x k normalized Gaussian kernel
//  3. Sobel: gradient magnitude sqrt(Gx² + Gy²)
//  4. Threshold: binarization against a cutoff (in place)
//
// # Coordinate System
//
// Buffers are row-major. Get and Set take (row, col); the image.Image methods
// take (x, y) with x = col and y = row. (0,0) is the top-left pixel.
//
// # Border Policy
//
// Convolutions treat pixels outside the image as the nearest edge pixel
// (clamp-to-edge). Nothing is zero-padded or wrapped.
//
// # Ownership
//
// Every image is owned by whoever allocated it. Stages never write to their
// input, with the single exception of Threshold. Release drops a buffer early
// when a driver is done with an intermediate.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Stages are stateless and can
// run concurrently on different images.
package imaging
