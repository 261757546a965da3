// Command lowerc inspects lowering pipelines.
//
// Usage:
//
//	lowerc [options]
//
// Examples:
//
//	lowerc -stage fragment                 # Print the fragment pass plan
//	lowerc -stage fragment -run            # Lower the demo module, show timings
//	lowerc -stage compute -config gfx.toml # Plan against a target profile
//	lowerc -stages                         # Print the stage/mask table
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/pterm/pterm"

	"github.com/gogpu/spvlower"
	"github.com/gogpu/spvlower/ir"
	"github.com/gogpu/spvlower/lower"
	"github.com/gogpu/spvlower/target"
)

var (
	stageName  = flag.String("stage", "fragment", "shader stage to plan for")
	configPath = flag.String("config", "", "target profile TOML (default: generic)")
	detailed   = flag.Bool("detailed", false, "plan with detailed resource collection")
	runDemo    = flag.Bool("run", false, "run the pipeline on the built-in demo module")
	stages     = flag.Bool("stages", false, "print the stage table and exit")
	version    = flag.Bool("version", false, "print version")
)

const lowercVersion = "0.1.0-dev"

var errorStyle = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)

func main() {
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Printf("lowerc version %s\n", lowercVersion)
		return
	}
	if *stages {
		printStages()
		return
	}

	stage, ok := parseStage(*stageName)
	if !ok {
		fail(fmt.Errorf("unknown stage %q", *stageName))
	}

	config := target.Default()
	if *configPath != "" {
		var err error
		config, err = target.Load(*configPath)
		if err != nil {
			fail(err)
		}
	}

	registry, err := spvlower.NewRegistry()
	if err != nil {
		fail(err)
	}
	passes, err := lower.NewBuilder(registry).Build(stage, lower.BuildOptions{
		CollectDetails: *detailed,
	})
	if err != nil {
		fail(err)
	}

	pterm.DefaultSection.Printf("%s pipeline (target %s)", ir.StageName(stage), config.Name)
	rows := pterm.TableData{{"#", "Pass", "Dependencies"}}
	for i, pass := range passes {
		info, _ := registry.Lookup(pass.Name())
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			pass.Name(),
			joinOrDash(info.Deps),
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
		fail(err)
	}

	if *runDemo {
		lowerDemo(stage, config, passes)
	}
}

// lowerDemo runs the resolved pipeline over the built-in demo module and
// reports timings, resource usage, and diagnostics.
func lowerDemo(stage ir.ShaderStage, config *target.Config, passes []lower.Pass) {
	module := demoModule(stage)
	ctx := lower.NewContext(module, stage, config)
	runner := &lower.Runner{}

	usage, err := runner.Run(ctx, passes)
	if err != nil {
		fail(err)
	}

	pterm.DefaultSection.Println("Timings")
	rows := pterm.TableData{{"Pass", "Elapsed"}}
	for _, timing := range runner.Timings() {
		rows = append(rows, []string{timing.Pass, timing.Elapsed.String()})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
		fail(err)
	}

	pterm.DefaultSection.Println("Resource usage")
	rows = pterm.TableData{{"Set", "Binding", "Stages", "Access"}}
	for key, record := range usage.Bindings {
		rows = append(rows, []string{
			fmt.Sprintf("%d", key.Set),
			fmt.Sprintf("%d", key.Binding),
			fmt.Sprintf("0x%02x", record.StageMask),
			record.Access.String(),
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
		fail(err)
	}
	for _, pc := range usage.PushConstants {
		pterm.Printf("push constants: offset %d, size %d, stages 0x%02x\n",
			pc.Offset, pc.Size, pc.StageMask)
	}

	for _, diag := range ctx.Diagnostics() {
		pterm.Warning.Printf("%s: %s\n", diag.Pass, diag.Message)
	}
}

// demoModule builds a small module with a bound uniform, an initialized
// private global, and foldable arithmetic, entered at the given stage.
func demoModule(stage ir.ShaderStage) *ir.Module {
	init := ir.ConstantHandle(0)
	return &ir.Module{
		Types: []ir.Type{
			{Name: "f32", Inner: ir.ScalarType{Kind: ir.ScalarFloat, Width: 4}},
		},
		Constants: []ir.Constant{
			{Type: 0, Value: ir.ScalarValue{Bits: math.Float64bits(2.0), Kind: ir.ScalarFloat}},
			{Type: 0, Value: ir.ScalarValue{Bits: math.Float64bits(3.0), Kind: ir.ScalarFloat}},
		},
		GlobalVariables: []ir.GlobalVariable{
			{Name: "material", Space: ir.SpaceUniform, Binding: &ir.ResourceBinding{Set: 0, Binding: 0}, Type: 0},
			{Name: "accum", Space: ir.SpacePrivate, Type: 0, Init: &init},
		},
		Functions: []ir.Function{{
			Name: "main",
			Blocks: []ir.Block{{
				Label: "entry",
				Instructions: []ir.Instruction{
					{Result: 1, Type: 0, Kind: ir.InstLoad{Ptr: ir.GlobalRef(0)}},
					{Result: 2, Type: 0, Kind: ir.InstBinary{Op: ir.BinaryAdd, LHS: ir.ConstantRef(0), RHS: ir.ConstantRef(1)}},
					{Kind: ir.InstStore{Ptr: ir.GlobalRef(1), Object: ir.ResultRef(2)}},
					{Kind: ir.InstReturn{}},
				},
			}},
		}},
		EntryPoints: []ir.EntryPoint{{Name: "main", Stage: stage, Function: 0}},
	}
}

func printStages() {
	rows := pterm.TableData{{"Stage", "Name", "Mask", "Execution model"}}
	all := []ir.ShaderStage{
		ir.StageVertex, ir.StageTessControl, ir.StageTessEval,
		ir.StageGeometry, ir.StageFragment, ir.StageCompute, ir.StageCopyShader,
	}
	for _, stage := range all {
		model, _ := ir.ToExecutionModel(stage)
		rows = append(rows, []string{
			fmt.Sprintf("%d", stage),
			ir.StageName(stage),
			fmt.Sprintf("0x%02x", ir.StageToMask(stage)),
			fmt.Sprintf("%d", model),
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
		fail(err)
	}
}

func parseStage(name string) (ir.ShaderStage, bool) {
	switch name {
	case "vertex":
		return ir.StageVertex, true
	case "tess-control":
		return ir.StageTessControl, true
	case "tess-eval":
		return ir.StageTessEval, true
	case "geometry":
		return ir.StageGeometry, true
	case "fragment":
		return ir.StageFragment, true
	case "compute":
		return ir.StageCompute, true
	case "copy":
		return ir.StageCopyShader, true
	default:
		return ir.StageInvalid, false
	}
}

func joinOrDash(deps []string) string {
	if len(deps) == 0 {
		return "-"
	}
	out := deps[0]
	for _, dep := range deps[1:] {
		out += ", " + dep
	}
	return out
}

func fail(err error) {
	errorStyle.Print("Error")
	pterm.FgRed.Println(" " + err.Error())
	os.Exit(1)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: lowerc [options]\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  lowerc -stage fragment           Print the fragment pass plan\n")
	fmt.Fprintf(os.Stderr, "  lowerc -stage fragment -run      Lower the demo module\n")
	fmt.Fprintf(os.Stderr, "  lowerc -stages                   Print the stage table\n")
}
