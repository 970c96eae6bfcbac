package engine

import (
	"encoding/json"
	"fmt"

	"github.com/piwi3910/CubbyCut/internal/model"
)

// solutionJSON is the persisted and cross-process form of a Solution.
// The layout is never stored; it is rebuilt from the placements.
type solutionJSON struct {
	Shapes          []shapeJSON       `json:"shapes"`
	StartID         int               `json:"startID"`
	Score           int               `json:"score"`
	Valid           bool              `json:"valid"`
	AspectRatioPref model.AspectRatio `json:"aspectRatioPref"`
	ClusterLimit    int               `json:"clusterLimit"`
}

type shapeJSON struct {
	Data    shapeDataJSON `json:"data"`
	PosX    int           `json:"posX"`
	PosY    int           `json:"posY"`
	Enabled bool          `json:"enabled"`
}

type shapeDataJSON struct {
	HighResShape model.Grid `json:"highResShape"`
	Title        string     `json:"title"`
	Clearance    *int       `json:"clearance,omitempty"`
}

// MarshalJSON writes the placements and the last computed score.
func (s *Solution) MarshalJSON() ([]byte, error) {
	out := solutionJSON{
		Shapes:          make([]shapeJSON, len(s.Placements)),
		StartID:         s.StartID,
		Score:           s.Score,
		Valid:           s.Valid,
		AspectRatioPref: s.AspectRatioPref,
		ClusterLimit:    s.ClusterLimit,
	}
	for i, p := range s.Placements {
		clearance := p.Shape.Clearance
		out.Shapes[i] = shapeJSON{
			Data: shapeDataJSON{
				HighResShape: p.Shape.HighRes,
				Title:        p.Shape.Title,
				Clearance:    &clearance,
			},
			PosX:    p.PosX,
			PosY:    p.PosY,
			Enabled: p.Enabled,
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON rebuilds shapes from their high-res grids, then recomputes
// the layout and score. Stored score and validity are ignored.
func (s *Solution) UnmarshalJSON(data []byte) error {
	var in solutionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	placements := make([]model.Placement, len(in.Shapes))
	for i, sj := range in.Shapes {
		clearance := model.DefaultClearance
		if sj.Data.Clearance != nil {
			clearance = *sj.Data.Clearance
		}
		shape, err := model.NewShape(sj.Data.Title, sj.Data.HighResShape, clearance)
		if err != nil {
			return fmt.Errorf("shape %d (%q): %w", i, sj.Data.Title, err)
		}
		placements[i] = model.Placement{
			Shape:   shape,
			PosX:    sj.PosX,
			PosY:    sj.PosY,
			Enabled: sj.Enabled,
		}
	}

	*s = Solution{
		Placements:      placements,
		StartID:         in.StartID,
		AspectRatioPref: in.AspectRatioPref,
		ClusterLimit:    in.ClusterLimit,
	}
	if s.ClusterLimit <= 0 {
		s.ClusterLimit = DefaultClusterLimit
	}
	s.MakeLayout()
	s.CalcScore()
	return nil
}
