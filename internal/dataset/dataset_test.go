package dataset

import (
	"errors"
	"strings"
	"testing"
)

func TestBuildRaggedColumns(t *testing.T) {
	ds, err := Build([][]string{
		{"Fruit", "Animal"},
		{"apple", ""},
		{"pear", "cat", "extra", "cells"},
		{"", "  "},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if ds.NumColumns() != 2 || ds.DataRows() != 3 {
		t.Fatalf("unexpected shape: cols=%d rows=%d", ds.NumColumns(), ds.DataRows())
	}
	if ds.MaxDepth() != 2 {
		t.Fatalf("expected max depth 2, got %d", ds.MaxDepth())
	}
	if ds.WordCount() != 3 {
		t.Fatalf("expected 3 words, got %d", ds.WordCount())
	}

	cat := ds.Columns[1][0]
	if cat.Text != "cat" || cat.Row != 1 || cat.Ordinal != 1 {
		t.Fatalf("unexpected word %+v", cat)
	}
	pear := ds.Columns[0][1]
	if pear.Row != 1 || pear.Ordinal != 2 {
		t.Fatalf("unexpected word %+v", pear)
	}
}

func TestBuildEmpty(t *testing.T) {
	var fe *FormatError
	if _, err := Build(nil); !errors.As(err, &fe) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}

func TestBuildTooManyColumns(t *testing.T) {
	header := make([]string, 27)
	for i := range header {
		header[i] = "c"
	}
	ds, err := Build([][]string{header, {"w"}})
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError, got %v", err)
	}
	if ds != nil {
		t.Fatal("nothing should be built on a format error")
	}
	if fe.Columns != 27 || fe.Limit != MaxColumns {
		t.Fatalf("unexpected error fields %+v", fe)
	}
	if !strings.Contains(fe.Error(), "27") || !strings.Contains(fe.Error(), "26") {
		t.Fatalf("message should name count and limit: %q", fe.Error())
	}
}

func TestBuildAcceptsExactlyTwentySix(t *testing.T) {
	header := make([]string, MaxColumns)
	for i := range header {
		header[i] = string(rune('A' + i))
	}
	if _, err := Build([][]string{header}); err != nil {
		t.Fatalf("26 columns must be accepted: %v", err)
	}
}

func TestTitleFallback(t *testing.T) {
	ds, _ := Build([][]string{{"", "Animal"}})
	if got := ds.Title(0); got != "Title 1" {
		t.Fatalf("expected fallback title, got %q", got)
	}
	if got := ds.Title(1); got != "Animal" {
		t.Fatalf("expected Animal, got %q", got)
	}
}
