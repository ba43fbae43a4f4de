package main

import (
	"bufio"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.bug.st/serial"

	"linbus-go/types"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream frames from a linmon device over its report UART",
		RunE:  runWatch,
	}
	cmd.Flags().String("port", "", "serial port (overrides config)")
	cmd.Flags().Int("baud", 0, "serial baud rate (overrides config)")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	portName := cfg.Port
	if v, _ := cmd.Flags().GetString("port"); v != "" {
		portName = v
	}
	baud := cfg.PortBaud
	if v, _ := cmd.Flags().GetInt("baud"); v != 0 {
		baud = v
	}

	mode := &serial.Mode{
		BaudRate: baud,
		Parity:   serial.NoParity,
		DataBits: 8,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return fmt.Errorf("failed to open com port %q : %v", portName, err)
	}
	defer port.Close()

	log.Info().Str("port", portName).Int("baud", baud).Msg("watching")

	sc := bufio.NewScanner(port)
	for sc.Scan() {
		rep, err := types.ParseReportLine(sc.Text())
		if err != nil {
			log.Debug().Err(err).Str("line", sc.Text()).Msg("skipping line")
			continue
		}
		switch rep.Kind {
		case types.ReportFrame:
			log.Info().
				Int("len", len(rep.Bytes)).
				Str("bytes", fmt.Sprintf("% X", rep.Bytes)).
				Msg("frame")
		case types.ReportError:
			log.Warn().Str("code", rep.Code).Msg("receiver fault")
		}
	}
	return sc.Err()
}
