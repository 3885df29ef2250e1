// SPDX-License-Identifier: MPL-2.0

package module

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/wirehook/wirehook/internal/issue"
	"github.com/wirehook/wirehook/internal/plugin"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// Symbols an interpreted module may define.
const (
	goDefinitionFuncName = "Definition"
	goInitializeFuncName = "Initialize"
	goInjectVarName      = "Inject"
	goAsidesFuncName     = "Asides"
)

// loadInterpreted evaluates a package main Go file with yaegi. A panic in
// interpreted code is reported as E_MODULE_LOAD.
func loadInterpreted(src Source, code []byte) (desc *Descriptor, err error) {
	defer func() {
		if r := recover(); r != nil {
			desc, err = nil, loadError(src, fmt.Errorf("panic: %v", r))
		}
	}()

	if len(strings.TrimSpace(string(code))) == 0 {
		return nil, loadError(src, fmt.Errorf("file is empty"))
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, loadError(src, err)
	}
	if _, err := i.Eval(string(code)); err != nil {
		return nil, loadError(src, fmt.Errorf("interpret: %w", err))
	}

	desc = &Descriptor{
		LogicalName: src.LogicalName,
		Category:    src.Category,
		Plugin:      src.Plugin,
		Location:    src.Location,
	}

	if fn, err := i.Eval(goDefinitionFuncName); err == nil {
		def, err := callMapFunc(fn, goDefinitionFuncName)
		if err != nil {
			return nil, loadError(src, err)
		}
		desc.Definition = Definition(def)
	} else if src.Category.RequiresDefinition() {
		return nil, issue.New(issue.ErrNoDefinition, "%s module %q must define %s() map[string]any",
			src.Category, src.LogicalName, goDefinitionFuncName).
			WithResource(src.Location)
	}

	if fn, err := i.Eval(goAsidesFuncName); err == nil {
		exports, err := callMapFunc(fn, goAsidesFuncName)
		if err != nil {
			return nil, loadError(src, err)
		}
		asides, err := extractAsides(exports)
		if err != nil {
			return nil, badModule(src, err)
		}
		desc.Asides = asides
	}

	initFn, err := i.Eval(goInitializeFuncName)
	if (err != nil || initFn.Kind() != reflect.Func) && src.Category == plugin.Route {
		desc.Initializer = Constant(src.LogicalName, map[string]any(desc.Definition))
		return desc, nil
	}
	if err != nil || initFn.Kind() != reflect.Func {
		return nil, issue.New(issue.ErrNoInitializer, "module %q must define %s(map[string]any) (any, error)",
			src.LogicalName, goInitializeFuncName).
			WithResource(src.Location)
	}

	var inject []string
	if v, err := i.Eval(goInjectVarName); err == nil {
		list, ok := v.Interface().([]string)
		if !ok {
			return nil, badModule(src, fmt.Errorf("%s must be a []string", goInjectVarName))
		}
		inject = append(inject, list...)
	}

	desc.Initializer = Initializer{
		Name:   src.LogicalName,
		Kind:   KindService,
		Inject: inject,
		Init:   interpretedInit(src, initFn),
	}
	return desc, nil
}

// interpretedInit adapts an interpreted Initialize function.
func interpretedInit(src Source, fn reflect.Value) InitFunc {
	return func(_ context.Context, deps map[string]any) (value any, err error) {
		defer func() {
			if r := recover(); r != nil {
				value, err = nil, loadError(src, fmt.Errorf("%s panicked: %v", goInitializeFuncName, r))
			}
		}()

		results := fn.Call([]reflect.Value{reflect.ValueOf(deps)})
		if len(results) != 2 {
			return nil, fmt.Errorf("%s must return (any, error)", goInitializeFuncName)
		}
		if errVal := results[1]; !errVal.IsNil() {
			if e, ok := errVal.Interface().(error); ok {
				return nil, e
			}
			return nil, fmt.Errorf("%s returned non-error second value", goInitializeFuncName)
		}
		return results[0].Interface(), nil
	}
}

// callMapFunc calls a no-argument function returning map[string]any and
// normalizes the result through JSON so nested values have the same shapes
// as decoded manifests.
func callMapFunc(fn reflect.Value, name string) (map[string]any, error) {
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not a function", name)
	}
	results := fn.Call(nil)
	if len(results) != 1 {
		return nil, fmt.Errorf("%s must return map[string]any", name)
	}
	raw, ok := results[0].Interface().(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must return map[string]any", name)
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	var normalized map[string]any
	if err := json.Unmarshal(data, &normalized); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return normalized, nil
}
