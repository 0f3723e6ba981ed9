package vcd

import "testing"

const sampleVCD = `$timescale 1ns $end
$scope module dut $end
$var wire 1 ! clk $end
$var wire 1 " rst $end
$var wire 8 # count [7:0] $end
$upscope $end
$enddefinitions $end
#0
0!
1"
b00000000 #
#5
1!
#10
0!
0"
#15
1!
b00000001 #
#20
0!
`

func TestParseHeader(t *testing.T) {
	data := Parse(sampleVCD)

	if data.Timescale != "1ns" {
		t.Errorf("expected timescale 1ns, got %s", data.Timescale)
	}
	if len(data.Signals) != 3 {
		t.Fatalf("expected 3 signals, got %d", len(data.Signals))
	}

	want := []string{"dut.clk", "dut.rst", "dut.count"}
	for i, name := range want {
		if got := data.Signals[i].QualifiedName(); got != name {
			t.Errorf("signal %d: expected %s, got %s", i, name, got)
		}
	}

	count := data.ByName["dut.count"]
	if count == nil {
		t.Fatal("dut.count not found")
	}
	if count.Width != 8 {
		t.Errorf("expected width 8, got %d", count.Width)
	}
	if count.Scope != "dut" {
		t.Errorf("expected scope dut, got %s", count.Scope)
	}
}

func TestParseValueChanges(t *testing.T) {
	data := Parse(sampleVCD)

	if data.EndTime != 20 {
		t.Errorf("expected end time 20, got %d", data.EndTime)
	}

	clk := data.ByName["dut.clk"]
	wantClk := []Change{{0, "0"}, {5, "1"}, {10, "0"}, {15, "1"}, {20, "0"}}
	if len(clk.Values) != len(wantClk) {
		t.Fatalf("expected %d clk changes, got %d", len(wantClk), len(clk.Values))
	}
	for i, c := range wantClk {
		if clk.Values[i] != c {
			t.Errorf("clk change %d: expected %+v, got %+v", i, c, clk.Values[i])
		}
	}

	count := data.ByName["dut.count"]
	wantCount := []Change{{0, "00000000"}, {15, "00000001"}}
	if len(count.Values) != len(wantCount) {
		t.Fatalf("expected %d count changes, got %d", len(wantCount), len(count.Values))
	}
	for i, c := range wantCount {
		if count.Values[i] != c {
			t.Errorf("count change %d: expected %+v, got %+v", i, c, count.Values[i])
		}
	}
}

func TestValueAt(t *testing.T) {
	data := Parse(sampleVCD)
	clk := data.ByName["dut.clk"]

	cases := []struct {
		time int
		want string
	}{
		{0, "0"},
		{4, "0"},
		{5, "1"},
		{7, "1"},
		{20, "0"},
		{100, "0"},
	}
	for _, c := range cases {
		if got := clk.ValueAt(c.time); got != c.want {
			t.Errorf("ValueAt(%d): expected %s, got %s", c.time, c.want, got)
		}
	}

	empty := &Signal{ID: "?", Name: "floating", Width: 1}
	if got := empty.ValueAt(0); got != "x" {
		t.Errorf("expected x for signal with no changes, got %s", got)
	}
}

func TestParseNormalizesValues(t *testing.T) {
	src := `$var wire 4 ! bus $end
$enddefinitions $end
#0
bXZ01 !
#5
X!
`
	data := Parse(src)
	bus := data.ByName["bus"]
	if bus == nil {
		t.Fatal("bus not found")
	}
	if bus.Values[0].Value != "xz01" {
		t.Errorf("expected lowercase xz01, got %s", bus.Values[0].Value)
	}
}

func TestParseIgnoresUnboundIDs(t *testing.T) {
	src := `$var wire 1 ! a $end
$enddefinitions $end
#0
1!
1%
b1010 %
`
	data := Parse(src)
	if len(data.Signals) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(data.Signals))
	}
	if len(data.Signals[0].Values) != 1 {
		t.Errorf("expected 1 change, got %d", len(data.Signals[0].Values))
	}
}

func TestParseMissingEnddefinitions(t *testing.T) {
	src := `$timescale 1ns $end
$var wire 1 ! a $end
#0
1!
#10
0!
`
	data := Parse(src)
	if len(data.Signals) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(data.Signals))
	}
	if len(data.Signals[0].Values) != 2 {
		t.Errorf("expected 2 changes despite missing $enddefinitions, got %d", len(data.Signals[0].Values))
	}
	if data.EndTime != 10 {
		t.Errorf("expected end time 10, got %d", data.EndTime)
	}
}

func TestParseNestedScopes(t *testing.T) {
	src := `$scope module top $end
$scope module sub $end
$var wire 1 ! deep $end
$upscope $end
$var wire 1 " shallow $end
$upscope $end
$enddefinitions $end
`
	data := Parse(src)
	if data.Signals[0].QualifiedName() != "top.sub.deep" {
		t.Errorf("unexpected qualified name %s", data.Signals[0].QualifiedName())
	}
	if data.Signals[1].QualifiedName() != "top.shallow" {
		t.Errorf("unexpected qualified name %s", data.Signals[1].QualifiedName())
	}
}

func TestParseMalformedLinesSkipped(t *testing.T) {
	src := `$var not_a_width ? broken $end
$var wire 1 ! ok $end
$enddefinitions $end
#notatime
#0
1!
`
	data := Parse(src)
	if len(data.Signals) != 1 || data.Signals[0].Name != "ok" {
		t.Fatalf("expected only the well-formed signal, got %+v", data.Signals)
	}
	if data.EndTime != 0 {
		t.Errorf("malformed timestamp should be ignored, end time %d", data.EndTime)
	}
}

func TestParseEmpty(t *testing.T) {
	data := Parse("")
	if len(data.Signals) != 0 {
		t.Errorf("expected no signals, got %d", len(data.Signals))
	}
	if data.Timescale != "1ns" {
		t.Errorf("expected default timescale, got %s", data.Timescale)
	}
}
