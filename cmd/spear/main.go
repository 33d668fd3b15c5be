// Command spear runs a single RV32I+Zicsr hart against an ELF image until
// the HTIF tohost word goes non-zero.
package main

import (
	"fmt"
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"

	"spear/internal/address"
	"spear/internal/bus"
	"spear/internal/elf"
	"spear/internal/hart"
	"spear/internal/htif"
	"spear/internal/logutil"
)

const defaultDRAMSize = 2 << 20 // 2 MiB default DRAM size.

func main() {
	os.Exit(run())
}

func run() int {
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optDRAMSize := getopt.IntLong("dram-size", 'm', defaultDRAMSize, "DRAM size in bytes")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		return 0
	}

	args := getopt.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: spear [options] <elf-image>")
		return 1
	}

	var file *os.File
	if *optLogFile != "" {
		f, err := os.Create(*optLogFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "spear: opening log file: %v\n", err)
			return 1
		}
		file = f
		defer file.Close()
	}

	level := logutil.LevelFromEnv(os.Getenv("SPEAR_LOG"))
	logger := slog.New(logutil.NewHandler(file, level, false))
	slog.SetDefault(logger)

	b := bus.New()
	if err := b.AddDevice(address.FromUint32(0x80000000), bus.NewRAM(uint32(*optDRAMSize))); err != nil {
		logger.Error("configuring DRAM", "err", err)
		return 1
	}

	img, err := elf.Load(args[0], b)
	if err != nil {
		logger.Error("loading ELF image", "path", args[0], "err", err)
		return 1
	}
	logger.Info("loaded ELF image", "path", args[0], "entry", img.Entry, "tohost", img.HasTohost)

	h := hart.New(img.Entry, b)
	if err := h.Run(img.Tohost, img.HasTohost); err != nil {
		logger.Error("hart run failed", "err", err)
		return 1
	}

	if img.HasTohost {
		tohost, err := h.Bus.ReadWord(img.Tohost)
		if err != nil {
			logger.Error("reading final tohost value", "err", err)
			return 1
		}
		if passed, testNum := htif.Outcome(tohost); !passed {
			logger.Error("riscv-tests run failed", "test", testNum)
			return 0 // traps and test outcomes never set the process exit code.
		}
	}

	logger.Info("hart run complete")
	return 0
}
