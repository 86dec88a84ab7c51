package csm

import (
	"fmt"

	"github.com/philipparndt/goweldx/internal/geometry"
	"github.com/philipparndt/goweldx/internal/lcs"
	"github.com/philipparndt/goweldx/internal/times"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

// GetCS returns the transformation that describes child in parent. If the
// systems are not neighbors, the transformations along the shortest path are
// composed and the result is cached together with its inverse.
func (m *Manager) GetCS(child, parent string) (*lcs.LocalCoordinateSystem, error) {
	if err := m.requireSystems(child, parent); err != nil {
		return nil, fmt.Errorf("get %q in %q: %w", child, parent, err)
	}
	if child == parent {
		return lcs.Identity(), nil
	}
	if e, ok := m.edges[edgeKey{child, parent}]; ok {
		return e.transformation, nil
	}

	path, err := m.path(child, parent)
	if err != nil {
		return nil, fmt.Errorf("get %q in %q: %w", child, parent, err)
	}

	result := m.edges[edgeKey{path[0], path[1]}].transformation
	for i := 1; i < len(path)-1; i++ {
		if result, err = result.Add(m.edges[edgeKey{path[i], path[i+1]}].transformation); err != nil {
			return nil, fmt.Errorf("get %q in %q: compose at %q: %w", child, parent, path[i], err)
		}
	}

	m.edges[edgeKey{child, parent}] = edge{transformation: result, kind: EdgeComputed}
	m.edges[edgeKey{parent, child}] = edge{transformation: result.Invert(), kind: EdgeComputed}
	m.logger.Debug("transformation computed",
		zap.String("manager", m.name),
		zap.String("child", child),
		zap.String("parent", parent),
		zap.Strings("path", path))
	return result, nil
}

// GetCSAt is like GetCS but resamples the result onto t
func (m *Manager) GetCSAt(child, parent string, t times.Time) (*lcs.LocalCoordinateSystem, error) {
	result, err := m.GetCS(child, parent)
	if err != nil {
		return nil, err
	}
	if t.IsZero() {
		return result, nil
	}
	return result.InterpTime(t)
}

// TransformData converts points given in system from into system to. A static
// transformation applies to every point. A time-dependent one requires one
// point per time step.
func (m *Manager) TransformData(points []r3.Vec, from, to string) ([]r3.Vec, error) {
	transformation, err := m.GetCS(from, to)
	if err != nil {
		return nil, err
	}

	if !transformation.IsTimeDependent() {
		return geometry.TransformPoints(points, transformation.Orientation(0), transformation.Coordinates(0)), nil
	}
	if len(points) != transformation.Len() {
		return nil, fmt.Errorf("transform from %q to %q: %w: %d points for %d time steps",
			from, to, lcs.ErrTimeMismatch, len(points), transformation.Len())
	}

	out := make([]r3.Vec, len(points))
	for i, p := range points {
		out[i] = r3.Add(transformation.Orientation(i).MulVec(p), transformation.Coordinates(i))
	}
	return out, nil
}

// path runs a breadth-first search over defined edges. Neighbors are visited
// in lexicographic order, so equal length paths resolve deterministically.
func (m *Manager) path(from, to string) ([]string, error) {
	prev := map[string]string{from: from}
	queue := []string{from}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n == to {
			break
		}
		for _, nb := range m.neighbors[n] {
			if _, seen := prev[nb]; seen {
				continue
			}
			prev[nb] = n
			queue = append(queue, nb)
		}
	}
	if _, ok := prev[to]; !ok {
		return nil, fmt.Errorf("%w: no path from %q to %q", ErrUnknownSystem, from, to)
	}

	var reversed []string
	for n := to; n != from; n = prev[n] {
		reversed = append(reversed, n)
	}
	reversed = append(reversed, from)

	path := make([]string, len(reversed))
	for i, n := range reversed {
		path[len(reversed)-1-i] = n
	}
	return path, nil
}
