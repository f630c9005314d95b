package arena

import (
	"github.com/automoto/voxel-arena/shared/gamemath"
	"github.com/automoto/voxel-arena/shared/mapmeta"
	"github.com/automoto/voxel-arena/tags"
	"github.com/solarlune/resolv"
)

const bombsiteCellSize = 16

// bombsiteIndex answers "which bombsite contains this point". The resolv
// space narrows the candidates by x and y, the boxes decide.
type bombsiteIndex struct {
	space *resolv.Space
	probe *resolv.Object
	sites []mapmeta.Box
}

func newBombsiteIndex(sites []mapmeta.Box) *bombsiteIndex {
	ix := &bombsiteIndex{
		space: resolv.NewSpace(gamemath.MapWidth, gamemath.MapHeight, bombsiteCellSize, bombsiteCellSize),
		sites: sites,
	}
	for i, b := range sites {
		// Pad by one voxel so boxes with inclusive or zero-width bounds
		// still occupy their cells.
		w := max(b.Max.X-b.Min.X, 0) + 2
		h := max(b.Max.Y-b.Min.Y, 0) + 2
		obj := resolv.NewObject(b.Min.X-1, b.Min.Y-1, w, h, tags.ResolvBombsite)
		obj.Data = i
		ix.space.Add(obj)
	}
	ix.probe = resolv.NewObject(0, 0, 1, 1, tags.ResolvProbe)
	ix.space.Add(ix.probe)
	return ix
}

// Find returns the index of the first bombsite containing p.
func (ix *bombsiteIndex) Find(p gamemath.Vec3) (int, bool) {
	if ix == nil || len(ix.sites) == 0 || !p.IsFinite() {
		return 0, false
	}
	ix.probe.X, ix.probe.Y = p.X, p.Y
	ix.probe.Update()

	best := -1
	if check := ix.probe.Check(0, 0, tags.ResolvBombsite); check != nil {
		for _, obj := range check.ObjectsByTags(tags.ResolvBombsite) {
			i, ok := obj.Data.(int)
			if !ok || !ix.sites[i].Contains(p) {
				continue
			}
			if best < 0 || i < best {
				best = i
			}
		}
	}
	return best, best >= 0
}
