package property_test

import (
	"testing"

	"github.com/pypto-lang/pypto/property"
)

func TestSetHas(t *testing.T) {
	s := property.NewSet(property.SSAForm, property.TypeChecked)
	if !s.Has(property.SSAForm) {
		t.Error("expected SSAForm to be present")
	}
	if s.Has(property.NoNestedCalls) {
		t.Error("expected NoNestedCalls to be absent")
	}
}

func TestSetWithAppliesRemoveBeforeAdd(t *testing.T) {
	s := property.NewSet(property.NormalizedStmtStructure)
	out := s.With(
		property.NewSet(property.NormalizedStmtStructure),
		property.NewSet(property.NormalizedStmtStructure),
	)
	if !out.Has(property.NormalizedStmtStructure) {
		t.Error("a property both invalidated and produced by the same pass should end up present")
	}
}

func TestSetWithRemoveOnly(t *testing.T) {
	s := property.NewSet(property.SSAForm, property.TypeChecked)
	out := s.With(property.NewSet(property.SSAForm), property.NewSet())
	if out.Has(property.SSAForm) {
		t.Error("SSAForm should have been removed")
	}
	if !out.Has(property.TypeChecked) {
		t.Error("TypeChecked should have been left alone")
	}
}

func TestPropertyStringUnknown(t *testing.T) {
	if got := property.IRProperty(255).String(); got != "invalid" {
		t.Errorf("got %q, want invalid", got)
	}
}

func TestPropertyStringKnown(t *testing.T) {
	if got := property.SplitIncoreOrch.String(); got != "SplitIncoreOrch" {
		t.Errorf("got %q, want SplitIncoreOrch", got)
	}
}
