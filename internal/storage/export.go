package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/physics"
)

type ExportBody struct {
	Name     string     `json:"name"`
	Mass     float64    `json:"mass"`
	RadiusAU float64    `json:"radius_au"`
	Position [3]float64 `json:"position"`
	Velocity [3]float64 `json:"velocity"`
}

// ExportData is a body set in the frame the engine will integrate it in.
type ExportData struct {
	Name      string       `json:"name"`
	G         float64      `json:"g"`
	Softening float64      `json:"softening"`
	Energy    float64      `json:"energy"`
	Bodies    []ExportBody `json:"bodies"`
}

func NewExportData(cfg *config.Config) ExportData {
	ic := cfg.InitialConditions()
	data := ExportData{
		Name:      cfg.Name,
		G:         physics.G,
		Softening: ic.Softening,
		Energy:    physics.NewNBody(ic.Masses, ic.Softening).Energy(dynamo.Pack(ic.Positions, ic.Velocities)),
		Bodies:    make([]ExportBody, len(ic.Masses)),
	}
	for i, m := range ic.Masses {
		p, v := ic.Positions[i], ic.Velocities[i]
		data.Bodies[i] = ExportBody{
			Name:     ic.Name(dynamo.BodyIndex(i)),
			Mass:     m,
			RadiusAU: physics.PhysicalRadiusAU(m),
			Position: [3]float64{p.X, p.Y, p.Z},
			Velocity: [3]float64{v.X, v.Y, v.Z},
		}
	}
	return data
}

func Export(w io.Writer, cfg *config.Config) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(cfg))
}

func ExportJSON(path string, cfg *config.Config) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return Export(file, cfg)
}
