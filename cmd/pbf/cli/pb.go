// Copyright 2017-25 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"fmt"
	"io"
	"os"

	pb "gopkg.in/cheggaaa/pb.v1"
)

// progressBar is a Reader with an associated ProgressBar tracking the bytes
// read relative to the total.
type progressBar struct {
	io.Reader
	bar *pb.ProgressBar
}

func newProgressBar(r io.Reader, total int64) *progressBar {
	bar := pb.New64(total).SetUnits(pb.U_BYTES_DEC).SetWidth(79)
	bar.Output = os.Stderr
	bar.Start()

	return &progressBar{
		Reader: bar.NewProxyReader(r),
		bar:    bar,
	}
}

// finish stops the bar and clears the terminal line of progress output.
func (p *progressBar) finish() {
	// make sure newline is not printed by Finish()
	p.bar.Output = nil
	p.bar.NotPrint = true

	p.bar.Finish()

	fmt.Fprintf(os.Stderr, "\033[2K\r") // clear status bar
}
