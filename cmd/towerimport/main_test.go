package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cellintel/towerdb"
)

const sampleCSV = `radio,mcc,net,area,cell,unit,lon,lat,range,samples,changeable,created,updated,averageSignal
LTE,405,860,1201,12345,0,77.2090,28.6139,1500,12,1,1459814400,1600000000,0
GSM,404,10,77,4001,,72.8777,19.0760,3000,4,1,1459814400,1600000000,
UMTS,310,260,5,77,,-122.4,37.7,2000,3,1,1459814400,1600000000,0
`

func TestRunImportsFromStdin(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "towers.db")
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-path", dbPath, "-mcc", "404,405"}, strings.NewReader(sampleCSV), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit %d, stderr=%s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "rows 3, imported 2, filtered 1, invalid 0") {
		t.Fatalf("unexpected summary: %q", stdout.String())
	}
	if !strings.Contains(stdout.String(), "holds 2 towers") {
		t.Fatalf("unexpected count line: %q", stdout.String())
	}

	store, err := towerdb.OpenSQLite(context.Background(), dbPath, towerdb.SQLiteOptions{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	key := towerdb.Key{MCC: 405, MNC: 860, Area: 1201, CellID: 12345}
	if _, found, err := store.Lookup(context.Background(), key); err != nil || !found {
		t.Fatalf("expected imported tower, found=%v err=%v", found, err)
	}
}

func TestRunImportsFilesIntoPebble(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "cells.csv")
	if err := os.WriteFile(csvPath, []byte(sampleCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	var stdout, stderr bytes.Buffer
	args := []string{"-backend", "pebble", "-path", filepath.Join(dir, "pebble"), "-radio", "lte", csvPath}
	if code := run(context.Background(), args, nil, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d, stderr=%s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "imported 1,") {
		t.Fatalf("unexpected summary: %q", stdout.String())
	}
}

func TestRunRejectsBadFlags(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"-mcc", "40x"}, nil, &stdout, &stderr); code != 2 {
		t.Fatalf("expected exit 2 for bad -mcc, got %d", code)
	}
	dir := t.TempDir()
	args := []string{"-backend", "redis", "-path", filepath.Join(dir, "x")}
	if code := run(context.Background(), args, nil, &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit 1 for unknown backend, got %d", code)
	}
	args = []string{"-path", filepath.Join(dir, "t.db"), filepath.Join(dir, "missing.csv")}
	if code := run(context.Background(), args, nil, &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit 1 for missing input, got %d", code)
	}
}
