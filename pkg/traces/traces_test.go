package traces

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/go-taint-trace/pkg/ast"
	"github.com/l3aro/go-taint-trace/pkg/module"
	"github.com/l3aro/go-taint-trace/pkg/parser"
	"github.com/l3aro/go-taint-trace/pkg/tracer"
)

func parseModule(t *testing.T, src string) *module.Module {
	t.Helper()
	m, err := module.NewLoader(module.LoaderOptions{}).LoadSource(context.Background(), "", parser.JavaScript, []byte(src))
	require.NoError(t, err)
	return m
}

func sinkArg(t *testing.T, m *module.Module) ast.Node {
	t.Helper()
	var arg ast.Node
	ast.Inspect(m.Program, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpression)
		if arg == nil && ok && ast.CalleeName(call.Callee) == "sink" && len(call.Arguments) > 0 {
			arg = call.Arguments[0]
		}
		return arg == nil
	})
	require.NotNil(t, arg)
	return arg
}

func collect(t *testing.T, src string) []Trace {
	t.Helper()
	m := parseModule(t, src)
	ts, err := Collect(context.Background(), tracer.New(tracer.Options{}), m, sinkArg(t, m))
	require.NoError(t, err)
	return ts
}

func strs(ts []Trace) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.String()
	}
	return out
}

func TestReconstructSharedPrefix(t *testing.T) {
	ts := collect(t, `
const a = c1 ? "x" : "y";
const b = c2 ? a : "z";
sink(b);
`)
	assert.Equal(t, []string{
		`Variable(b) -> Variable(a) -> Constant("x")`,
		`Variable(b) -> Variable(a) -> Constant("y")`,
		`Variable(b) -> Constant("z")`,
	}, strs(ts))
}

func TestReconstructSiblingRoots(t *testing.T) {
	ts := collect(t, `
const b = "tail";
sink("head" + b);
`)
	assert.Equal(t, []string{
		`Constant("head")`,
		`Variable(b) -> Constant("tail")`,
	}, strs(ts))
	assert.True(t, ts[0].Flags().Has(tracer.Modification))
}

func TestReconstructLinearChain(t *testing.T) {
	ts := collect(t, `
const a = "x";
const b = a;
const c = b;
sink(c);
`)
	require.Len(t, ts, 1)
	v, ok := ts[0].Constant()
	assert.True(t, ok)
	assert.Equal(t, "x", v)
	term, ok := ts[0].Terminal()
	require.True(t, ok)
	assert.Equal(t, `Constant("x")`, term.String())
}

func TestReconstructHalt(t *testing.T) {
	m := parseModule(t, `
const v = c ? "a" : "b";
sink(v);
`)
	var got []Trace
	rc := NewReconstructor(func(t Trace) bool {
		got = append(got, t)
		return false
	})
	require.NoError(t, tracer.New(tracer.Options{}).Trace(context.Background(), m, sinkArg(t, m), rc.Callbacks(nil)))
	assert.Len(t, got, 1)
}

func TestReconstructStoppedTrace(t *testing.T) {
	m := parseModule(t, `
const a = "x";
sink(a);
`)
	var got []Trace
	rc := NewReconstructor(func(t Trace) bool {
		got = append(got, t)
		return true
	})
	stop := func(tracer.Node) tracer.Signal { return tracer.StopFollowingVariable }
	require.NoError(t, tracer.New(tracer.Options{}).Trace(context.Background(), m, sinkArg(t, m), rc.Callbacks(stop)))
	require.Len(t, got, 1)
	_, ok := got[0].Terminal()
	assert.False(t, ok)
}

func TestTracePasses(t *testing.T) {
	ts := collect(t, `
const v = DOMPurify.sanitize(input);
sink(v);
`)
	require.NotEmpty(t, ts)
	for _, tr := range ts {
		assert.True(t, tr.Passes("sanitize"), tr.String())
		assert.False(t, tr.Passes("escape"), tr.String())
	}
	assert.Equal(t, tracer.Flag(0), Trace(nil).Flags())
	assert.Nil(t, Trace(nil).Last())
}

func TestRender(t *testing.T) {
	ts := collect(t, `
const v = c ? "a" : b;
sink(v);
`)
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, ts))
	var decoded [][]Step
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "variable", decoded[0][0].Kind)
	assert.Equal(t, "constant", decoded[0][1].Kind)
	assert.Equal(t, "global", decoded[1][len(decoded[1])-1].Kind)
	assert.Equal(t, 3, decoded[0][0].Line)

	buf.Reset()
	WriteText(&buf, ts, "", false)
	out := buf.String()
	assert.Contains(t, out, "trace 1/2")
	assert.Contains(t, out, `Constant("a")  <stdin>:2:15`)
}
