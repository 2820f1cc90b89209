package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/lestrrat-go/neon"
	"github.com/lestrrat-go/neon/encoding"
	"github.com/lestrrat-go/neon/s11n"
)

type cmdopts struct {
	Events   bool   `long:"events" description:"dump the raw event stream instead of the tree"`
	NoEnt    bool   `long:"noent" description:"substitute entity references with their values"`
	Encoding string `long:"encoding" description:"decode input from the given encoding first"`
	Version  bool   `long:"version"`
}

func main() {
	os.Exit(_main())
}

func showVersion() {
	fmt.Printf("neon-lint: using neon version %s\n", neon.Version)
}

func showUsage() {
	fmt.Printf(`Usage : neon-lint [options] XMLfiles ...
	Parse the XML files and output the result of the parsing
	--events   : dump the event stream instead of the tree
	--noent    : substitute entity references with their values
	--encoding : decode input from the given encoding first
	--version  : display the version of the XML library used
`)
}

func _main() int {
	opts := cmdopts{}
	args, err := flags.ParseArgs(&opts, os.Args[1:])
	if err != nil {
		showUsage()
		return 1
	}

	if opts.Version {
		showVersion()
		return 0
	}

	var inputs []io.Reader
	if len(args) > 0 {
		for _, f := range args {
			fh, err := os.Open(f)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s\n", err)
				return 1
			}
			defer fh.Close()
			inputs = append(inputs, fh)
		}
	} else {
		inputs = append(inputs, os.Stdin)
	}

	for _, in := range inputs {
		buf, err := io.ReadAll(in)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			return 1
		}
		if opts.Encoding != "" {
			buf, err = encoding.Decode(opts.Encoding, buf)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s\n", err)
				return 1
			}
		}

		if opts.Events {
			if err := dumpEvents(buf); err != nil {
				fmt.Fprintf(os.Stderr, "%s\n", err)
				return 1
			}
			continue
		}

		doc, err := neon.ParseDocument(buf, neon.WithEntityResolution(opts.NoEnt))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			return 1
		}
		d := s11n.Dumper{}
		if err := d.DumpDocument(os.Stdout, doc); err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			return 1
		}
	}
	return 0
}

func dumpEvents(buf []byte) error {
	p := neon.NewPullParser(buf)
	defer p.Close()
	for {
		ev, err := p.Next()
		if err != nil {
			if err == neon.ErrEOF {
				return nil
			}
			return err
		}
		pos := ev.Pos()
		fmt.Printf("%4d:%-3d %-22s %s\n", pos.Line, pos.Column, ev.EventType(), describeEvent(ev))
	}
}

func describeEvent(ev neon.Event) string {
	switch ev := ev.(type) {
	case *neon.XMLDecl:
		return fmt.Sprintf("version=%q encoding=%q", ev.Version, ev.Encoding)
	case *neon.Doctype:
		return ev.Name
	case *neon.StartTag:
		s := ev.Name.String()
		for _, attr := range ev.Attributes {
			s += fmt.Sprintf(" %s=%q", attr.Name, attr.Value())
		}
		if ev.Empty {
			s += " (empty)"
		}
		return s
	case *neon.EndTag:
		return ev.Name.String()
	case *neon.Text:
		if ev.CDATA {
			return fmt.Sprintf("CDATA %q", ev.Content)
		}
		return fmt.Sprintf("%q", ev.Content)
	case *neon.CharRef:
		return fmt.Sprintf("&#x%X;", ev.Value)
	case *neon.EntityRef:
		return "&" + ev.Name + ";"
	case *neon.Comment:
		return fmt.Sprintf("%q", ev.Content)
	case *neon.PI:
		return ev.Target + " " + ev.Data
	}
	return ""
}
