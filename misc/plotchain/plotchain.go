// plotchain draws trace plots of the parameters in a sampled chain.
package main

import (
	"flag"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/cjvogel/ramcal/artifact"
)

func main() {
	chainFile := flag.String("chain", "parameters_10000.csv", "thinned chain file")
	param := flag.String("param", "", "plot a single parameter (all by default)")
	out := flag.String("out", "trace.png", "output image")
	flag.Parse()

	names, c, err := artifact.ReadChain(*chainFile)
	if err != nil {
		panic(err)
	}
	fmt.Println(names)

	p := plot.New()
	p.X.Label.Text = "sample"
	p.Y.Label.Text = "value"

	var lines []interface{}
	for j, name := range names {
		if *param != "" && name != *param {
			continue
		}
		pts := make(plotter.XYs, c.Len())
		for i := 0; i < c.Len(); i++ {
			pts[i].X = float64(i)
			pts[i].Y = c.Row(i)[j]
		}
		lines = append(lines, name, pts)
	}
	if len(lines) == 0 {
		panic("unknown parameter " + *param)
	}

	err = plotutil.AddLines(p, lines...)
	if err != nil {
		panic(err)
	}

	if err := p.Save(8*vg.Inch, 4*vg.Inch, *out); err != nil {
		panic(err)
	}
}
