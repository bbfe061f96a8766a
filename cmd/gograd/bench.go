package main

import (
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gograd/gograd/graph"
	"github.com/gograd/gograd/pkg/support/xslices"
	"github.com/pbnjay/memory"
)

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)
	oddRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFF")).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#999")).
			PaddingLeft(1).PaddingRight(1)
	titleStyle = lipgloss.NewStyle().Bold(true).Padding(1, 4, 0, 4)
)

func newPlainTable(withHeader bool) *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) (s lipgloss.Style) {
			if withHeader && row == 1 {
				return headerRowStyle
			}
			if row%2 == 0 {
				return oddRowStyle
			}
			return evenRowStyle
		})
}

// buildBenchGraph builds a deep expression exercising every operation, with a
// dependency chain of roughly 4*depth nodes rooted at a single scalar.
func buildBenchGraph(g *graph.Graph, depth int) *graph.Node {
	inputs := xslices.Map(xslices.Iota(1.0, 4), func(v float64) *graph.Node {
		return g.Parameter(fmt.Sprintf("x%g", v), v/4)
	})
	z := inputs[0]
	for ii := range depth {
		x := inputs[ii%len(inputs)]
		switch ii % 5 {
		case 0:
			z = graph.Tanh(graph.Add(graph.Mul(z, x), inputs[1]))
		case 1:
			z = graph.Sub(z, graph.PowScalar(x, 2))
		case 2:
			z = graph.Mul(z, graph.Exp(graph.Neg(graph.Relu(z))))
		case 3:
			z = graph.Div(z, graph.Add(graph.Exp(x), inputs[2]))
		default:
			z = graph.Add(z, graph.Log(graph.Add(graph.Relu(z), inputs[3])))
		}
	}
	return z
}

// runBenchmark rebuilds and back-propagates the benchmark graph repeats
// times and prints a machine and throughput report.
func runBenchmark(depth, repeats int) {
	fmt.Println(titleStyle.Render("Machine"))
	machine := newPlainTable(false)
	machine.Row("Go version", runtime.Version())
	machine.Row("OS/arch", runtime.GOOS+"/"+runtime.GOARCH)
	machine.Row("CPUs", strconv.Itoa(runtime.NumCPU()))
	machine.Row("Total memory", humanize.IBytes(memory.TotalMemory()))
	fmt.Println(machine)

	var numNodes int
	elapsed := make([]time.Duration, 0, repeats)
	start := time.Now()
	for range repeats {
		repeatStart := time.Now()
		g := graph.New("bench")
		root := buildBenchGraph(g, depth)
		if err := g.Error(); err != nil {
			panic(err)
		}
		graph.Backward(root)
		numNodes = g.NumNodes()
		g.Finalize()
		elapsed = append(elapsed, time.Since(repeatStart))
	}
	total := time.Since(start)
	totalNodes := int64(numNodes) * int64(repeats)
	rate := float64(totalNodes) / total.Seconds()

	fmt.Println(titleStyle.Render("Build + backward throughput"))
	results := newPlainTable(true)
	results.Row("Metric", "Value")
	results.Row("Nodes per graph", humanize.Comma(int64(numNodes)))
	results.Row("Repeats", humanize.Comma(int64(repeats)))
	results.Row("Total nodes", humanize.Comma(totalNodes))
	results.Row("Total time", total.Round(time.Millisecond).String())
	results.Row("Slowest repeat", xslices.Max(elapsed).Round(time.Microsecond).String())
	results.Row("Throughput", humanize.SIWithDigits(rate, 2, "nodes/s"))
	fmt.Println(results)
}
