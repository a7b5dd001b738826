// Copyright (c) 2025 The procport Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package prompt holds the two LLM prompt templates used by a conversion run
// and loads user overrides from YAML.
package prompt

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// FileName is the override file looked up in the working directory.
const FileName = "prompts.yaml"

const defaultParseRefs = `You are an expert in Oracle stored procedure development. Analyze the Oracle
stored procedure code below and:
1. Find every call into an external package (a package not defined in this
   code, and not an Oracle built-in package such as DBMS_OUTPUT or UTL_FILE).
2. List the package names defined in this code.
Answer with a JSON object in exactly this format:
{
  "deps": ["{package_name}.{function_name}", ...],
  "package_name": ["{package_name}", ...]
}

<code>{{.Code}}</code>
`

const defaultGenerateJava = `You are a Java and MySQL expert rewriting Oracle stored procedures as
equivalent Java programs. Convert the Oracle stored procedure below into
equivalent Java:

1. Implement database queries and updates with the MySQL JDBC API using plain
   SQL. PL/SQL is not allowed.
2. The symbol table below lists functions already converted elsewhere (the
   Oracle definition and the Java class and method signature). When the code
   calls one of them, call the Java version directly.
3. Produce complete Java code with nothing omitted. In comments, note the Oracle
   package and function signature each method comes from. Report every
   converted function signature, Oracle and Java, including parameters and
   return type, as JSON in exactly this format:
{
  "java_code": "{generated_java_code}",
  "symbols": [{"oracle": "{package}.{function}(PARAM1TYPE PARAM1NAME, ...) RETURNS RETURNTYPE", "java": "ClassName.methodName(PARAM1TYPE PARAM1NAME, ...) RETURNS RETURNTYPE"}, ...]
}

<predefined_symbols>
{{.Symbols}}
</predefined_symbols>

<stored_procedure>
{{.Code}}
</stored_procedure>
`

// Data is the input to both templates. Symbols is newline-joined.
type Data struct {
	Code    string
	Symbols string
}

// Set is a parsed pair of templates.
type Set struct {
	parseRefs    *template.Template
	generateJava *template.Template
}

type fileFormat struct {
	ParseRefs    string `yaml:"parse_refs"`
	GenerateJava string `yaml:"generate_java"`
}

// Default returns the built-in templates.
func Default() *Set {
	return &Set{
		parseRefs:    template.Must(template.New("parse_refs").Parse(defaultParseRefs)),
		generateJava: template.Must(template.New("generate_java").Parse(defaultGenerateJava)),
	}
}

// Load returns the built-in templates with any overrides from path applied.
// An empty path means no overrides.
func Load(path string) (*Set, error) {
	s := Default()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts: %w", err)
	}
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse prompts %s: %w", path, err)
	}
	if strings.TrimSpace(f.ParseRefs) != "" {
		if s.parseRefs, err = template.New("parse_refs").Parse(f.ParseRefs); err != nil {
			return nil, fmt.Errorf("prompts %s: %w", path, err)
		}
	}
	if strings.TrimSpace(f.GenerateJava) != "" {
		if s.generateJava, err = template.New("generate_java").Parse(f.GenerateJava); err != nil {
			return nil, fmt.Errorf("prompts %s: %w", path, err)
		}
	}
	return s, nil
}

// Resolve picks the override file: explicit wins, otherwise prompts.yaml in
// workDir if it exists, otherwise none.
func Resolve(explicit, workDir string) string {
	if explicit != "" {
		return explicit
	}
	p := filepath.Join(workDir, FileName)
	if _, err := os.Stat(p); err == nil {
		return p
	} else if !errors.Is(err, os.ErrNotExist) {
		return p
	}
	return ""
}

// ParseRefs renders the reference extraction prompt.
func (s *Set) ParseRefs(code string) (string, error) {
	return render(s.parseRefs, Data{Code: code})
}

// GenerateJava renders the conversion prompt. symbols are joined with newlines
// in the order given.
func (s *Set) GenerateJava(code string, symbols []string) (string, error) {
	return render(s.generateJava, Data{Code: code, Symbols: strings.Join(symbols, "\n")})
}

func render(t *template.Template, d Data) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
