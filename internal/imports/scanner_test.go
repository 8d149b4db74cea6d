package imports

import (
	"reflect"
	"testing"
)

func TestScanImports(t *testing.T) {
	src := `import React, { useState, Fragment as F } from 'react'
import * as Icons from "lucide-react"
import { cn } from '@/lib/utils'
import type { ButtonProps } from './types'
import './globals.css'
import { useState as useLocal } from 'react'

export default function Page() { return null }
`
	r := Scan(src)

	wantSources := []string{"react", "lucide-react", "@/lib/utils", "./types", "./globals.css"}
	if !reflect.DeepEqual(r.Sources, wantSources) {
		t.Errorf("Expected sources %v, got %v", wantSources, r.Sources)
	}

	wantComponents := []string{"React", "Fragment", "Icons", "ButtonProps"}
	if !reflect.DeepEqual(r.Components, wantComponents) {
		t.Errorf("Expected components %v, got %v", wantComponents, r.Components)
	}
}

func TestScanMultilineImportWithComments(t *testing.T) {
	src := `import {
  Button, // primary, secondary
  /* Card, */ Dialog,
  Input,
} from '@/components/ui'
import { cn } from '@/lib/utils'
`
	r := Scan(src)

	wantSources := []string{"@/components/ui", "@/lib/utils"}
	if !reflect.DeepEqual(r.Sources, wantSources) {
		t.Errorf("Expected sources %v, got %v", wantSources, r.Sources)
	}
	wantComponents := []string{"Button", "Dialog", "Input"}
	if !reflect.DeepEqual(r.Components, wantComponents) {
		t.Errorf("Expected components %v, got %v", wantComponents, r.Components)
	}
}

func TestScanHooks(t *testing.T) {
	src := `
export function useAuth() {}
function useCart(id) {}
function user() {}
function useful() {}
export function useAuth() {}
`
	r := Scan(src)
	want := []string{"useAuth", "useCart", "useAuth"}
	if !reflect.DeepEqual(r.Hooks, want) {
		t.Errorf("Expected hooks %v, got %v", want, r.Hooks)
	}
}

func TestCollectorAcrossFiles(t *testing.T) {
	c := NewCollector()
	c.Add(`import { Button } from './Button'` + "\nfunction useA() {}")
	c.Add(`import { Button, Card } from './Button'` + "\nfunction useA() {}")

	r := c.Result()
	if !reflect.DeepEqual(r.Sources, []string{"./Button"}) {
		t.Errorf("Expected one source, got %v", r.Sources)
	}
	if !reflect.DeepEqual(r.Components, []string{"Button", "Card"}) {
		t.Errorf("Expected Button, Card, got %v", r.Components)
	}
	if len(r.Hooks) != 2 {
		t.Errorf("Expected duplicated hooks to be kept, got %v", r.Hooks)
	}
}

func TestScanNoImports(t *testing.T) {
	r := Scan("const x = 1\n")
	if len(r.Sources) != 0 || len(r.Components) != 0 || len(r.Hooks) != 0 {
		t.Errorf("Expected empty result, got %+v", r)
	}
}
