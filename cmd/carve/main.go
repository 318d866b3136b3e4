// carve - parametric solid resizing
// Stretch or shrink 3D models along one axis without distorting their
// ends, rescale UVs from a pristine copy and inspect scene graphs.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fortio.org/log"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/taigrr/carve/pkg/loader"
	"github.com/taigrr/carve/pkg/materials"
	"github.com/taigrr/carve/pkg/math3d"
	"github.com/taigrr/carve/pkg/models"
	"github.com/taigrr/carve/pkg/resize"
	"github.com/taigrr/carve/pkg/scene"
	"github.com/taigrr/carve/pkg/uv"
)

var (
	libraryPath string
	verbose     bool

	meshName     string
	axisName     string
	fromDim      float64
	toDim        float64
	cutterExtent float64
	outPath      string

	scaleU     float64
	scaleV     float64
	repeatOnly bool

	exitCode int
)

func main() {
	cmd := &cobra.Command{
		Use:   "carve",
		Short: "Parametric solid resizing",
		Long: `carve - parametric solid resizing

Resize models along X or Z by cutting them in two and joining the halves,
so ends and profiles keep their shape. Textures are rescaled from a
pristine copy of the UVs so repeated edits never drift.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLogLevel(log.Verbose)
			}
		},
	}
	cmd.PersistentFlags().StringVar(&libraryPath, "materials", "", "Material library (TOML or YAML) applied to loaded models")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	infoCmd := &cobra.Command{
		Use:   "info <model>",
		Short: "Display model information",
		Long:  "Display format, node, mesh and material counts, vertex and triangle counts and the bounding box of a model file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exitCode = runInfo(args[0])
			return nil
		},
	}

	describeCmd := &cobra.Command{
		Use:   "describe <model>",
		Short: "List groups and meshes with their materials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exitCode = runDescribe(args[0])
			return nil
		},
	}

	resizeCmd := &cobra.Command{
		Use:   "resize <model>",
		Short: "Resize a mesh along one axis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exitCode = runResize(args[0])
			return nil
		},
	}
	resizeCmd.Flags().StringVar(&meshName, "mesh", "", "Mesh to resize (default: first mesh)")
	resizeCmd.Flags().StringVar(&axisName, "axis", "x", "Axis to resize along (x or z)")
	resizeCmd.Flags().Float64Var(&fromDim, "from", 0, "Current dimension (default: measured)")
	resizeCmd.Flags().Float64Var(&toDim, "to", 0, "Target dimension")
	resizeCmd.Flags().Float64Var(&cutterExtent, "cutter-extent", 0, "Cutting volume extent (default: from the mesh size)")
	resizeCmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the result as GLB")
	_ = resizeCmd.MarkFlagRequired("to")

	uvCmd := &cobra.Command{
		Use:   "uv <model>",
		Short: "Rescale texture coordinates of a mesh",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exitCode = runUV(args[0])
			return nil
		},
	}
	uvCmd.Flags().StringVar(&meshName, "mesh", "", "Mesh to edit (default: first mesh)")
	uvCmd.Flags().Float64Var(&scaleU, "u", 1, "U scale")
	uvCmd.Flags().Float64Var(&scaleV, "v", 1, "V scale")
	uvCmd.Flags().BoolVar(&repeatOnly, "repeat", false, "Set the texture repeat instead of rescaling UVs (not kept in GLB output)")
	uvCmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the result as GLB")

	kelvinCmd := &cobra.Command{
		Use:   "kelvin <temperature>",
		Short: "Print the light color of a color temperature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exitCode = runKelvin(args[0])
			return nil
		},
	}

	cmd.AddCommand(infoCmd, describeCmd, resizeCmd, uvCmd, kelvinCmd)

	if err := fang.Execute(context.Background(), cmd); err != nil {
		os.Exit(1)
	}
	os.Exit(exitCode)
}

func runInfo(modelPath string) int {
	l := loader.New("")
	path := l.ModelPath(modelPath)

	info, err := os.Stat(path)
	if err != nil {
		return log.FErrf("cannot access file: %v", err)
	}
	asset, err := l.LoadAsset(modelPath)
	if err != nil {
		return log.FErrf("load model: %v", err)
	}
	mesh := asset.Flatten()
	size := mesh.Size()
	center := mesh.Center()

	ext := filepath.Ext(path)
	fmt.Printf("File:       %s\n", filepath.Base(path))
	fmt.Printf("Format:     %s\n", strings.ToUpper(strings.TrimPrefix(ext, ".")))
	fmt.Printf("Size:       %.2f KB\n", float64(info.Size())/1024)
	fmt.Println()
	fmt.Printf("Nodes:      %d\n", len(asset.Nodes))
	fmt.Printf("Meshes:     %d\n", len(asset.Meshes))
	fmt.Printf("Materials:  %d\n", len(asset.Materials))
	fmt.Printf("Vertices:   %d\n", mesh.VertexCount())
	fmt.Printf("Triangles:  %d\n", mesh.TriangleCount())
	fmt.Println()
	fmt.Printf("Bounds Min: (%.3f, %.3f, %.3f)\n", mesh.BoundsMin.X, mesh.BoundsMin.Y, mesh.BoundsMin.Z)
	fmt.Printf("Bounds Max: (%.3f, %.3f, %.3f)\n", mesh.BoundsMax.X, mesh.BoundsMax.Y, mesh.BoundsMax.Z)
	fmt.Printf("Dimensions: %.3f x %.3f x %.3f\n", size.X, size.Y, size.Z)
	fmt.Printf("Center:     (%.3f, %.3f, %.3f)\n", center.X, center.Y, center.Z)

	textures := 0
	for _, m := range asset.Materials {
		m.EachTexture(func(models.TextureSlot, *models.Texture) { textures++ })
	}
	if textures > 0 {
		fmt.Println()
		fmt.Printf("Textures:   %d\n", textures)
	}
	return 0
}

// loadScene loads a model and applies the material library, if any.
func loadScene(modelPath string) (*scene.Node, error) {
	root, err := loader.New("").LoadModelAsync(modelPath).Wait(context.Background())
	if err != nil {
		return nil, err
	}
	if libraryPath != "" {
		lib, err := materials.LoadLibrary(libraryPath)
		if err != nil {
			return nil, err
		}
		n := lib.Apply(root)
		log.Infof("Applied %d materials from %s", n, libraryPath)
	}
	return root, nil
}

// pickMesh returns the mesh called name, or the first mesh.
func pickMesh(root *scene.Node, name string) (*scene.Node, error) {
	if name != "" {
		n := root.ObjectByName(name)
		if n == nil || !n.IsMesh() {
			return nil, fmt.Errorf("no mesh named %q", name)
		}
		return n, nil
	}
	meshes := scene.Meshes(root)
	if len(meshes) == 0 {
		return nil, fmt.Errorf("model has no meshes")
	}
	return meshes[0], nil
}

func runDescribe(modelPath string) int {
	root, err := loadScene(modelPath)
	if err != nil {
		return log.FErrf("load model: %v", err)
	}
	if err := scene.WriteInventory(os.Stdout, root); err != nil {
		return log.FErrf("write inventory: %v", err)
	}
	return 0
}

func axisSize(v math3d.Vec3, a resize.Axis) float64 {
	switch a {
	case resize.AxisY:
		return v.Y
	case resize.AxisZ:
		return v.Z
	default:
		return v.X
	}
}

func runResize(modelPath string) int {
	axis, err := resize.ParseAxis(axisName)
	if err != nil {
		return log.FErrf("%v", err)
	}
	root, err := loadScene(modelPath)
	if err != nil {
		return log.FErrf("load model: %v", err)
	}
	object, err := pickMesh(root, meshName)
	if err != nil {
		return log.FErrf("%v", err)
	}

	from := fromDim
	if from == 0 {
		from = axisSize(object.WorldBounds().Size(), axis)
	}
	extent := cutterExtent
	if extent == 0 {
		extent = resize.CutterExtentFor(object)
	}

	cutter := resize.NewCuttingVolume(extent)
	cutter.Transform.Position = object.WorldBounds().Center()
	cutter.UpdateMatrixWorld()

	result, err := resize.Resize(object, cutter, from, toDim, axis, resize.WithSnapshot())
	if err != nil {
		return log.FErrf("resize %s: %v", object.Name, err)
	}
	size := result.WorldBounds().Size()
	log.Infof("Resized %s along %s: %.3f -> %.3f (%d triangles)", object.Name, axis, from, axisSize(size, axis), result.Geometry.TriangleCount())
	fmt.Printf("Dimensions: %.3f x %.3f x %.3f\n", size.X, size.Y, size.Z)

	if outPath == "" {
		return 0
	}
	if err := models.SaveGLB(outPath, result.Geometry, result.Material); err != nil {
		return log.FErrf("%v", err)
	}
	log.Infof("Wrote %s", outPath)
	return 0
}

func runUV(modelPath string) int {
	root, err := loadScene(modelPath)
	if err != nil {
		return log.FErrf("load model: %v", err)
	}
	n, err := pickMesh(root, meshName)
	if err != nil {
		return log.FErrf("%v", err)
	}
	if err := scaleTextures(n, scaleU, scaleV, repeatOnly); err != nil {
		return log.FErrf("%v", err)
	}

	if outPath == "" {
		fmt.Printf("Rescaled %s to (%g, %g)\n", n.Name, scaleU, scaleV)
		return 0
	}
	world := n.Geometry.Clone()
	world.Transform(n.MatrixWorld)
	if err := models.SaveGLB(outPath, world, n.Material); err != nil {
		return log.FErrf("%v", err)
	}
	log.Infof("Wrote %s", outPath)
	return 0
}

// scaleTextures tiles n's textures by (u, v) either by rescaling the UVs
// from a pristine snapshot or, with repeat set, through the texture repeat.
// Never both, since a renderer multiplies the two.
func scaleTextures(n *scene.Node, u, v float64, repeat bool) error {
	if repeat {
		uv.SetTextureRepeat(n, u, v)
		return nil
	}
	n.TakeSnapshot()
	if err := uv.RescaleUV(n, u, v); err != nil {
		return fmt.Errorf("rescale uv: %w", err)
	}
	return nil
}

func runKelvin(arg string) int {
	k, err := strconv.ParseFloat(arg, 64)
	if err != nil || k <= 0 {
		return log.FErrf("invalid temperature %q", arg)
	}
	c := materials.KelvinToRGB(k)
	fmt.Printf("%s (%.3f, %.3f, %.3f)\n", c.Hex(), c.R, c.G, c.B)
	return 0
}
