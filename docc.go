package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/hhhapz/swiftbook/docc"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const maxSource = 1 << 20

type declarationDoc struct {
	Name     string       `json:"name"`
	Doc      docc.Comment `json:"doc"`
	Markdown string       `json:"markdown"`
}

func (a *appState) handleDocC(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxSource))
	if err != nil {
		failResponse(c, http.StatusRequestEntityTooLarge, "Source must be at most 1 MiB")
		return
	}

	comments := docc.Extract(string(body))
	decls := make([]declarationDoc, 0, comments.Len())
	for _, d := range comments.All() {
		md, _ := comment(d.Comment, true)
		decls = append(decls, declarationDoc{Name: d.Name, Doc: d.Comment, Markdown: md})
	}
	c.JSON(http.StatusOK, gin.H{"declarations": decls})
}

func newDocCCommand(app *appState) *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "docc <file.swift>",
		Short: "Print the documentation comments of a Swift source file",
		Long:  "Print the documentation comments of a Swift source file. Use - to read standard input.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				src []byte
				err error
			)
			if args[0] == "-" {
				src, err = io.ReadAll(cmd.InOrStdin())
			} else {
				src, err = os.ReadFile(args[0])
			}
			if err != nil {
				return errors.Wrap(err, "could not read source")
			}

			comments := docc.Extract(string(src))
			if comments.Len() == 0 {
				fmt.Fprintln(app.out, "No documented declarations found.")
				return nil
			}

			for _, d := range comments.All() {
				md, _ := comment(d.Comment, full)
				fmt.Fprintf(app.out, "## %s\n\n%s\n\n", d.Name, md)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "print whole comments instead of summaries")
	return cmd
}
