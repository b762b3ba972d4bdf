// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cor_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/1xeno0/library/internal/core/cor"
)

// appendCommand appends its own name to the piped string so tests can
// observe execution order and piping.
type appendCommand struct {
	cor.BaseCommand
	fail bool
}

func newAppendCommand(name string, fail bool) *appendCommand {
	return &appendCommand{BaseCommand: *cor.NewBaseCommand(name), fail: fail}
}

func (c *appendCommand) Execute(ctx cor.Context) {
	if c.fail {
		ctx.AddError(c.GetName(), fmt.Errorf("%s exploded", c.GetName()))
		return
	}
	in := fmt.Sprintf("%v", ctx.Get(c.GetInputParam()))
	ctx.Add(c.GetOutputParam(), in+"->"+c.GetName())
}

func newTestContext() cor.Context {
	ctx := cor.NewBaseContext()
	ctx.SetContext(context.Background())
	return ctx
}

func TestChainPipesOutputToInput(t *testing.T) {
	chain := cor.NewBaseChain("test-chain")
	chain.AddCommand(newAppendCommand("first", false))
	chain.AddCommand(newAppendCommand("second", false))

	ctx := newTestContext()
	defer ctx.Close()
	ctx.Add(cor.CtxIn, "start")

	chain.Execute(ctx)

	// After each command the chain moves CtxOut into CtxIn, so the final
	// value sits on the input key.
	assert.False(t, ctx.HasErrors())
	assert.Equal(t, "start->first->second", ctx.Get(cor.CtxIn))
	assert.Nil(t, ctx.Get(cor.CtxOut))
}

func TestChainStopsAfterFailure(t *testing.T) {
	chain := cor.NewBaseChain("failing-chain")
	chain.AddCommand(newAppendCommand("first", false))
	chain.AddCommand(newAppendCommand("boom", true))
	chain.AddCommand(newAppendCommand("after", false))

	ctx := newTestContext()
	defer ctx.Close()
	ctx.Add(cor.CtxIn, "start")

	chain.Execute(ctx)

	assert.True(t, ctx.HasErrors())
	assert.Contains(t, ctx.GetErrors(), "boom")
	// The failed command produced no output, so the pipe is empty and the
	// command after the failure never ran.
	assert.Nil(t, ctx.Get(cor.CtxIn))
	assert.Nil(t, ctx.Get(cor.CtxOut))
}

func TestContextCloseRemovesTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scratch.bin")
	assert.NoError(t, os.WriteFile(path, []byte("data"), 0o644))

	ctx := newTestContext()
	ctx.AddTempFile(path)
	ctx.Close()

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.Empty(t, ctx.GetTempFiles())
}

func TestContextCloseToleratesMissingFiles(t *testing.T) {
	ctx := newTestContext()
	ctx.AddTempFile(filepath.Join(t.TempDir(), "never-created"))
	assert.NotPanics(t, func() { ctx.Close() })
}
