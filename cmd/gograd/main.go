// gograd demonstrates the scalar autodiff engine: it builds small computation
// graphs, runs gradient-based optimization loops on them, and benchmarks the
// backward pass.
//
// Usage:
//
//	gograd -demo expression   # gradients of f = x*y + z^2
//	gograd -demo descent      # gradient descent on (x-3)^2
//	gograd -demo neuron       # trains a tanh neuron on a tiny gate dataset
//	gograd -bench             # build+backward throughput report
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gograd/gograd/graph"
	"github.com/gograd/gograd/ml/train"
	"github.com/gograd/gograd/models/neuron"
	"github.com/gograd/gograd/pkg/support/xslices"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

var (
	flagDemo = flag.String("demo", "", "Demo to run: one of \"expression\", \"descent\" or \"neuron\".")

	flagBench = flag.Bool("bench", false, "Run the build+backward benchmark and print a report.")
	flagBenchDepth = flag.Int("bench_depth", 10_000,
		"Number of composite layers in the benchmark expression graph.")
	flagBenchRepeats = flag.Int("bench_repeats", 50,
		"How many times the benchmark graph is rebuilt and differentiated.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	switch {
	case *flagBench:
		runBenchmark(*flagBenchDepth, *flagBenchRepeats)
	case *flagDemo == "expression":
		demoExpression()
	case *flagDemo == "descent":
		demoDescent()
	case *flagDemo == "neuron":
		demoNeuron()
	default:
		klog.Errorf("Nothing to do: pass -demo or -bench. See 'gograd -help'.")
		os.Exit(1)
	}
}

// demoExpression prints the gradients of f = x*y + z^2 at (2, 3, 4).
func demoExpression() {
	g := graph.New("expression")
	defer g.Finalize()
	x := g.Parameter("x", 2)
	y := g.Parameter("y", 3)
	z := g.Parameter("z", 4)
	f := graph.Add(graph.Mul(x, y), graph.PowScalar(z, 2))
	must.M(g.Error())

	graph.Backward(f)
	fmt.Println(g)
	fmt.Printf("\nf = x*y + z^2 = %g\n", f.Data())
	for _, p := range g.Parameters() {
		fmt.Printf("df/d%s = %g\n", p.GetParameterName(), p.Grad())
	}
}

// demoDescent minimizes (x-3)^2 with 20 steps of gradient descent, lr=0.1.
func demoDescent() {
	g := graph.New("descent")
	defer g.Finalize()
	x := g.Parameter("x", 0)
	sgd := train.NewSGD(g.Parameters(), 0.1)

	losses := must.M1(train.NewLoop("descent", 20).Run(func(epoch int) (float64, error) {
		sgd.ZeroGrad()
		loss := graph.PowScalar(graph.Sub(x, graph.Const(g, 3)), 2)
		if err := g.Error(); err != nil {
			return 0, err
		}
		graph.Backward(loss)
		sgd.Step()
		fmt.Printf("step %2d: x=%.5f loss=%.6f\n", epoch, x.Data(), loss.Data())
		return loss.Data(), nil
	}))
	fmt.Printf("\nx converged to %.5f (loss %g -> %g)\n", x.Data(), losses[0], xslices.Last(losses))
}

// demoNeuron trains a tanh neuron to act as an OR-style gate with targets in
// {-1, 1}, 100 epochs of SGD with lr=0.5 on the total squared error.
func demoNeuron() {
	inputs := [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	targets := []float64{-1, 1, 1, 1}

	g := graph.New("neuron")
	defer g.Finalize()
	n := neuron.NewWithWeights(g, []float64{0.1, -0.2}, 0.05)
	sgd := train.NewSGD(n.Parameters(), 0.5)

	losses := must.M1(train.NewLoop("neuron", 100).WithProgressBar().Run(func(epoch int) (float64, error) {
		sgd.ZeroGrad()
		loss := n.Loss(inputs, targets)
		if err := g.Error(); err != nil {
			return 0, err
		}
		graph.Backward(loss)
		sgd.Step()
		return loss.Data(), nil
	}))

	fmt.Printf("\nloss: %.6f -> %.6f over %d epochs\n", losses[0], xslices.Last(losses), len(losses))
	for ii, sample := range inputs {
		fmt.Printf("neuron(%v) = %+.4f (target %+g)\n", sample, n.Forward(sample).Data(), targets[ii])
	}
}
