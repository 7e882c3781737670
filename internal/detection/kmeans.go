package detection

import (
	"math"
	"sort"

	apperrors "github.com/ironsheep/lane-tools-mcp/internal/errors"
)

// MaxIterations bounds the k-means refinement loop.
const MaxIterations = 100

// Cluster is a group of normals judged to be the same physical line.
type Cluster struct {
	// Rho and Theta are the centroid: the mean of the members.
	Rho   float64 `json:"rho"`
	Theta float64 `json:"theta"`

	// Votes is the sum of the members' votes.
	Votes int `json:"votes"`

	Members []Normal `json:"members"`
}

// Normal returns the centroid as a Normal.
func (c Cluster) Normal() Normal {
	return Normal{Rho: c.Rho, Theta: c.Theta, Votes: c.Votes}
}

// ClusterLines groups normals into at most k clusters with k-means over
// (rho, theta).
//
// # Algorithm
//
//  1. The input is sorted by theta, then rho, then votes descending.
//  2. Each axis is divided by its span across the input, so rho (pixels) and
//     theta (degrees) weigh equally in the Euclidean distance.
//  3. Centroid i is seeded with the point at index floor((i+0.5)*n/k),
//     which spreads seeds evenly over the sorted list. There is no
//     randomness; the same input always gives the same clusters.
//  4. Points are assigned to their nearest centroid (lowest index on ties),
//     centroids move to the mean of their members, and this repeats until no
//     assignment changes or MaxIterations is reached.
//
// k is clamped to len(normals). Empty input returns an empty slice. Clusters
// that end up with no members are dropped, so identical normals can yield
// fewer than k clusters even after clamping. The result is ordered by theta,
// then rho.
//
// Returns an InvalidClusterCount error if k < 1.
func ClusterLines(normals []Normal, k int) ([]Cluster, error) {
	if k < 1 {
		return nil, apperrors.New(apperrors.KindInvalidClusterCount, "ClusterLines",
			"k=%d must be >= 1", k)
	}
	n := len(normals)
	if n == 0 {
		return []Cluster{}, nil
	}
	if k > n {
		k = n
	}

	points := make([]Normal, n)
	copy(points, normals)
	sort.SliceStable(points, func(i, j int) bool {
		if points[i].Theta != points[j].Theta {
			return points[i].Theta < points[j].Theta
		}
		if points[i].Rho != points[j].Rho {
			return points[i].Rho < points[j].Rho
		}
		return points[i].Votes > points[j].Votes
	})

	rhoScale, thetaScale := span(points)
	coords := make([][2]float64, n)
	for i, p := range points {
		coords[i] = [2]float64{p.Rho / rhoScale, p.Theta / thetaScale}
	}

	centroids := make([][2]float64, k)
	for i := range centroids {
		centroids[i] = coords[int((float64(i)+0.5)*float64(n)/float64(k))]
	}

	assign := make([]int, n)
	for i := range assign {
		assign[i] = -1
	}

	for iter := 0; iter < MaxIterations; iter++ {
		changed := false
		for i, c := range coords {
			nearest := nearestCentroid(c, centroids)
			if assign[i] != nearest {
				assign[i] = nearest
				changed = true
			}
		}
		if !changed {
			break
		}

		sums := make([][2]float64, k)
		counts := make([]int, k)
		for i, c := range coords {
			sums[assign[i]][0] += c[0]
			sums[assign[i]][1] += c[1]
			counts[assign[i]]++
		}
		for j := range centroids {
			// An emptied centroid keeps its last position.
			if counts[j] > 0 {
				centroids[j] = [2]float64{sums[j][0] / float64(counts[j]), sums[j][1] / float64(counts[j])}
			}
		}
	}

	groups := make([][]Normal, k)
	for i, p := range points {
		groups[assign[i]] = append(groups[assign[i]], p)
	}

	clusters := make([]Cluster, 0, k)
	for _, members := range groups {
		if len(members) == 0 {
			continue
		}
		var c Cluster
		for _, m := range members {
			c.Rho += m.Rho
			c.Theta += m.Theta
			c.Votes += m.Votes
		}
		c.Rho /= float64(len(members))
		c.Theta /= float64(len(members))
		c.Members = members
		clusters = append(clusters, c)
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		if clusters[i].Theta != clusters[j].Theta {
			return clusters[i].Theta < clusters[j].Theta
		}
		return clusters[i].Rho < clusters[j].Rho
	})
	return clusters, nil
}

// span returns the extent of rho and theta across points, 1 for an axis
// with no extent.
func span(points []Normal) (rho, theta float64) {
	minR, maxR := points[0].Rho, points[0].Rho
	minT, maxT := points[0].Theta, points[0].Theta
	for _, p := range points[1:] {
		minR, maxR = math.Min(minR, p.Rho), math.Max(maxR, p.Rho)
		minT, maxT = math.Min(minT, p.Theta), math.Max(maxT, p.Theta)
	}
	rho, theta = maxR-minR, maxT-minT
	if rho == 0 {
		rho = 1
	}
	if theta == 0 {
		theta = 1
	}
	return rho, theta
}

func nearestCentroid(c [2]float64, centroids [][2]float64) int {
	best, bestDist := 0, math.Inf(1)
	for j, m := range centroids {
		dr, dt := c[0]-m[0], c[1]-m[1]
		if d := dr*dr + dt*dt; d < bestDist {
			best, bestDist = j, d
		}
	}
	return best
}
