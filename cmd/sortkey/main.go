package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/milk9111/slotengine/common"
	"github.com/milk9111/slotengine/config"
	"github.com/milk9111/slotengine/renderkey"
	"github.com/milk9111/slotengine/slotmap"
)

const usage = `usage: sortkey [-config file] <command> [args]

commands:
  layout                            print the key layout
  encode <order> <material> <mesh>  pack a key; handles are written 5v1
  decode <key>...                   unpack hex keys
`

func main() {
	log := common.NewLogger("warn", true)
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Error().Err(err).Msg("sortkey")
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("sortkey", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() { fmt.Fprint(out, usage) }
	configPath := fs.String("config", "", "YAML config file providing sortkey.widths")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	layout, err := cfg.Layout()
	if err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return eris.New("missing command")
	}

	switch rest[0] {
	case "layout":
		fmt.Fprintln(out, layout)
		return nil
	case "encode":
		return encode(layout, rest[1:], out)
	case "decode":
		return decode(layout, rest[1:], out)
	default:
		fs.Usage()
		return eris.Errorf("unknown command %q", rest[0])
	}
}

func encode(l renderkey.Layout, args []string, out io.Writer) error {
	if len(args) != 3 {
		return eris.New("encode wants <order> <material> <mesh>")
	}
	order, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return eris.Wrapf(err, "order %q", args[0])
	}
	material, err := parseHandle(args[1])
	if err != nil {
		return err
	}
	mesh, err := parseHandle(args[2])
	if err != nil {
		return err
	}

	k, err := l.Encode(renderkey.FieldsFor(uint32(order), material, mesh))
	if err != nil {
		return err
	}
	fmt.Fprintln(out, k)
	return nil
}

func decode(l renderkey.Layout, args []string, out io.Writer) error {
	if len(args) == 0 {
		return eris.New("decode wants at least one key")
	}
	for _, arg := range args {
		v, err := strconv.ParseUint(strings.TrimPrefix(arg, "0x"), 16, 64)
		if err != nil {
			return eris.Wrapf(err, "key %q", arg)
		}
		f := l.Decode(renderkey.Key(v))
		fmt.Fprintf(out, "%s order=%d material=%s mesh=%s\n", renderkey.Key(v), f.Order, f.Material(), f.Mesh())
	}
	return nil
}

func parseHandle(s string) (slotmap.Handle, error) {
	idx, ver, ok := strings.Cut(s, "v")
	if !ok {
		return slotmap.Handle{}, eris.Errorf("handle %q: want <index>v<version>", s)
	}
	i, err := strconv.ParseUint(idx, 10, 32)
	if err != nil {
		return slotmap.Handle{}, eris.Wrapf(err, "handle %q", s)
	}
	v, err := strconv.ParseUint(ver, 10, 32)
	if err != nil {
		return slotmap.Handle{}, eris.Wrapf(err, "handle %q", s)
	}
	return slotmap.Handle{Index: uint32(i), Version: uint32(v)}, nil
}
