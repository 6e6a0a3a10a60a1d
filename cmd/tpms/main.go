package main

import (
	"fmt"
	"os"

	"github.com/fogleman/fauxgl"
	"github.com/kmarchais/tpms"
	"github.com/kmarchais/tpms/internal/config"
	"github.com/kmarchais/tpms/render"
	"github.com/nfnt/resize"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	surface       string
	resolution    int
	offset        float64
	percentOffset float64
	phaseShift    []float64
	cellSize      []float64
	cellRepeat    []int
	configFile    string
	output        string
	pngOutput     string
	saveConfig    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tpms",
		Short: "triply periodic minimal surface sheet generator",
	}

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "generate sheet geometry and write it as binary STL",
		RunE:  generate,
	}
	generateCmd.Flags().StringVar(&surface, "surface", "gyroid", "catalog surface name")
	generateCmd.Flags().IntVar(&resolution, "resolution", 20, "lattice samples per axis")
	generateCmd.Flags().Float64Var(&offset, "offset", 0.3, "distance between the offset level sets")
	generateCmd.Flags().Float64Var(&percentOffset, "percent-offset", -1, "offset as fraction of valid range in [0,1], overrides --offset")
	generateCmd.Flags().Float64SliceVar(&phaseShift, "phase-shift", []float64{0, 0, 0}, "pattern translation per axis")
	generateCmd.Flags().Float64SliceVar(&cellSize, "cell-size", []float64{1, 1, 1}, "spatial period length per axis")
	generateCmd.Flags().IntSliceVar(&cellRepeat, "cell-repeat", []int{1, 1, 1}, "periods tiled per axis")
	generateCmd.Flags().StringVar(&configFile, "config", "", "load parameters from YAML file, flags are ignored")
	generateCmd.Flags().StringVarP(&output, "out", "o", "sheet.stl", "output STL path")
	generateCmd.Flags().StringVar(&pngOutput, "png", "", "also render a PNG preview to this path")
	generateCmd.Flags().StringVar(&saveConfig, "save-config", "", "write the effective parameters to a YAML file")

	surfacesCmd := &cobra.Command{
		Use:   "surfaces",
		Short: "list the catalog surface names",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range tpms.Surfaces() {
				fmt.Println(name)
			}
		},
	}

	rootCmd.AddCommand(generateCmd, surfacesCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func generate(cmd *cobra.Command, args []string) error {
	params, err := flagParameters()
	if err != nil {
		return err
	}
	model, err := tpms.NewModelParams(params, render.Engine{})
	if err != nil {
		return err
	}
	if percentOffset >= 0 {
		if err := model.SetPercentOffset(percentOffset); err != nil {
			return err
		}
	}
	sheet, err := model.Sheet()
	if err != nil {
		return err
	}
	fp, err := os.Create(output)
	if err != nil {
		return err
	}
	defer fp.Close()
	if err := render.WriteSTL(fp, sheet.Triangles); err != nil {
		return err
	}
	density, err := model.Density()
	if err != nil {
		return err
	}
	minOff, maxOff := model.OffsetBounds()
	fmt.Printf("%s: %d triangles, volume %.4g, density %.3f\n",
		output, len(sheet.Triangles), sheet.Volume, density)
	fmt.Printf("offset %.4g of valid range [%.4g, %.4g]\n",
		model.Parameters().Offset, minOff, maxOff)
	if pngOutput != "" {
		if err := stlToPNG(output, pngOutput); err != nil {
			return err
		}
	}
	if saveConfig != "" {
		return config.Save(saveConfig, config.FromParameters(model.Parameters()))
	}
	return nil
}

// stlToPNG renders a shaded isometric preview of the written STL.
func stlToPNG(stlName, outputname string) error {
	mesh, err := fauxgl.LoadSTL(stlName)
	if err != nil {
		return err
	}
	const (
		width, height = 1920, 1080 // output width and height in pixels
		fovy          = 30         // vertical field of view in degrees
		near, far     = 1, 10
	)
	var (
		eye    = fauxgl.V(2.4, 2.4, 2.4)              // camera position
		center = fauxgl.V(0, 0, 0)                    // view center position
		up     = fauxgl.V(0, 0, 1)                    // up vector
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize() // light direction
		color  = fauxgl.HexColor("#468966")           // object color
	)
	// fit mesh in a bi-unit cube centered at the origin
	mesh.BiUnitCube()
	context := fauxgl.NewContext(width, height)
	context.ClearColorBufferWith(fauxgl.HexColor("#FFF8E3"))
	aspect := float64(width) / float64(height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, near, far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = color
	context.Shader = shader
	context.DrawMesh(mesh)
	// downsample image for antialiasing
	image := resize.Resize(width, height, context.Image(), resize.Bilinear)
	return fauxgl.SavePNG(outputname, image)
}

func flagParameters() (tpms.Parameters, error) {
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return tpms.Parameters{}, err
		}
		return cfg.Parameters(), nil
	}
	if len(phaseShift) != 3 || len(cellSize) != 3 || len(cellRepeat) != 3 {
		return tpms.Parameters{}, fmt.Errorf("phase-shift, cell-size and cell-repeat need 3 components")
	}
	return tpms.Parameters{
		Surface:    surface,
		Resolution: resolution,
		Offset:     offset,
		PhaseShift: r3.Vec{X: phaseShift[0], Y: phaseShift[1], Z: phaseShift[2]},
		CellSize:   r3.Vec{X: cellSize[0], Y: cellSize[1], Z: cellSize[2]},
		CellRepeat: tpms.V3i{cellRepeat[0], cellRepeat[1], cellRepeat[2]},
	}, nil
}
