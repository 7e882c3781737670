// Package detection turns a binarized edge image into lane lines.
//
// # Pipeline
//
//  1. Accumulate: every on-pixel (x, y) votes once per sampled angle θ for
//     the cell holding ρ = x·cos θ + y·sin θ.
//  2. Peaks: every cell with more votes than the threshold becomes a Normal.
//     Neighbouring cells of one physical line are all reported.
//  3. ClusterLines: k-means over (ρ, θ) merges those near-duplicates into
//     one centroid per lane line.
//  4. Visualize / Heatmap: the accumulator rendered as an image for
//     inspection.
//
// # Coordinate System
//
// Origin (0, 0) is the top-left pixel, X increases rightward and Y downward.
// θ is in degrees. In this frame a horizontal line y = c has θ = 90 and
// ρ = c; a vertical line x = c has θ = 0 and ρ = c.
//
// # Ownership
//
// A Space is built for one frame and owned by the caller that built it.
// Concurrent frames each need their own Space.
package detection
