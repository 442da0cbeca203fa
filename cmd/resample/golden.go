// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"path"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/resample/pkg/core/resample/resampletest"
	"github.com/gomlx/resample/pkg/core/tensors"
	"github.com/gomlx/resample/pkg/core/tensors/numpy"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"
)

// writeGoldenCases writes one .npz file per reference case to dir, holding the arrays "input" and "output".
// Kernels under test in other frameworks can load them and compare with resampletest.ForwardTolerance.
func writeGoldenCases(dir string) {
	must.M(os.MkdirAll(dir, 0755))
	cases := resampletest.Cases()
	bar := progressbar.NewOptions(len(cases),
		progressbar.OptionSetDescription("golden cases"),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.ThemeUnicode),
	)

	table := newResultsTable(true, lipgloss.Left, lipgloss.Right)
	table.Headers("Case", "Input", "Output", "Bytes")
	var totalMemory uintptr
	for _, c := range cases {
		filePath := path.Join(dir, c.Name()+".npz")
		input, output := must.M2(c.Run())
		err := numpy.ToNpzFile(map[string]*tensors.Tensor{"input": input, "output": output}, filePath)
		if err != nil {
			klog.Fatalf("Failed to write golden case: %+v", errors.WithMessagef(err, "case %s", c.Name()))
		}
		memory := input.Memory() + output.Memory()
		totalMemory += memory
		table.Row(false, c.Name(), input.Shape().String(), output.Shape().String(), humanize.Bytes(uint64(memory)))
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	fmt.Println()
	fmt.Println(titleStyle.Render(fmt.Sprintf("Golden cases in %q", dir)))
	fmt.Println(table.render())
	klog.Infof("Wrote %d cases (%s) to %q", len(cases), humanize.Bytes(uint64(totalMemory)), dir)
}
