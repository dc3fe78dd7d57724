// Command tc compiles a single source file to NASM assembly.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gmofishsauce/tc/internal/ast"
	"github.com/gmofishsauce/tc/internal/compiler"
)

var (
	output      string
	printTokens bool
	printAst    bool
)

var command = &cobra.Command{
	Use:  "tc file",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := run(args[0]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	command.PersistentFlags().StringVarP(&output, "output", "o", "", "output file (default: input with its last byte replaced by 's')")
	command.PersistentFlags().BoolVar(&printTokens, "print-tokens", false, "print the lexed token stream to stderr")
	command.PersistentFlags().BoolVar(&printAst, "print-ast", false, "print the parsed tree to stderr")
}

func main() {
	if err := command.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(inputName string) error {
	in, err := os.Open(inputName)
	if err != nil {
		return fmt.Errorf("error opening file '%s' for reading.", inputName)
	}
	defer in.Close()

	outputName := output
	if outputName == "" {
		outputName = defaultOutputName(inputName)
	}
	out, err := os.Create(outputName)
	if err != nil {
		return fmt.Errorf("error opening file '%s' for writing.", outputName)
	}
	defer out.Close()

	res, cerr := compiler.Compile(inputName, in, out)

	if printTokens && res != nil {
		for _, t := range res.Tokens {
			fmt.Fprintln(os.Stderr, t.String())
		}
	}
	if printAst && res != nil && res.Lib != nil {
		dumpLib(os.Stderr, res.Lib)
	}

	return cerr
}

// defaultOutputName replaces the input path's last byte with 's', matching
// the original's in-place strdup/overwrite rule (file.t -> file.s).
func defaultOutputName(name string) string {
	if name == "" {
		return name
	}
	b := []byte(name)
	b[len(b)-1] = 's'
	return string(b)
}

func dumpLib(w *os.File, lib *ast.Lib) {
	for _, f := range lib.Funcs {
		fmt.Fprintf(w, "fn %s\n", f.Name)
		dumpStmt(w, f.Body, 1)
	}
}

func dumpStmt(w *os.File, s ast.Stmt, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	switch n := s.(type) {
	case *ast.CompoundStmt:
		fmt.Fprintf(w, "%s{\n", indent)
		for _, child := range n.Stmts {
			dumpStmt(w, child, depth+1)
		}
		fmt.Fprintf(w, "%s}\n", indent)
	case *ast.IfStmt:
		fmt.Fprintf(w, "%sif\n", indent)
		dumpStmt(w, n.Then, depth+1)
		if n.Else != nil {
			fmt.Fprintf(w, "%selse\n", indent)
			dumpStmt(w, n.Else, depth+1)
		}
	case *ast.WhileStmt:
		fmt.Fprintf(w, "%swhile\n", indent)
		dumpStmt(w, n.Body, depth+1)
	case *ast.ReturnStmt:
		fmt.Fprintf(w, "%sreturn\n", indent)
	case *ast.ExprStmt:
		fmt.Fprintf(w, "%sexpr\n", indent)
	case *ast.NoopStmt:
		fmt.Fprintf(w, "%s;\n", indent)
	default:
		fmt.Fprintf(w, "%s?%T\n", indent, s)
	}
}
