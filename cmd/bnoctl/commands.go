package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/orientation_computer/internal/app"
	"github.com/relabs-tech/orientation_computer/internal/bno055"
	"github.com/relabs-tech/orientation_computer/internal/config"
	"github.com/relabs-tech/orientation_computer/internal/orientation"
	"github.com/relabs-tech/orientation_computer/internal/sensors"
)

// openDevice is replaced in tests.
var openDevice = func(cmd *cobra.Command) (*sensors.Source, error) {
	path, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return sensors.Open(cfg, app.NewLogger(debug))
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bnoctl",
		Short:         "inspect a BNO055 from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "./orientation_config.txt", "path to configuration file")
	root.PersistentFlags().Bool("debug", false, "toggle debug logging")

	root.AddCommand(newProbeCmd(), newReadCmd(), newDumpCmd())
	return root
}

func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:        "probe",
		SuggestFor: []string{"pro", "prob"},
		Short:      "initialize the BNO055 and print its identity and state",
		Long: `probe runs the full init sequence (chip id check, reset, NDOF mode) and
prints chip and firmware ids, system status, system error, self-test result
and calibration levels.`,
		Example: `  bnoctl probe --config=/etc/orientation_config.txt`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := openDevice(cmd)
			if err != nil {
				return err
			}
			defer src.Close()
			return probe(cmd.OutOrStdout(), src.Dev())
		},
	}
}

func probe(w io.Writer, d *bno055.Dev) error {
	var ids [7]byte
	if err := d.ReadRegisters(bno055.RegChipID, ids[:]); err != nil {
		return err
	}
	st, err := d.Status()
	if err != nil {
		return err
	}
	se, err := d.Error()
	if err != nil {
		return err
	}
	selfTest, err := d.ReadRegister(bno055.RegSTResult)
	if err != nil {
		return err
	}
	cal, err := d.CalibrationStatus()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "address     0x%02X\n", d.Addr())
	fmt.Fprintf(w, "chip id     0x%02X (acc 0x%02X, mag 0x%02X, gyr 0x%02X)\n", ids[0], ids[1], ids[2], ids[3])
	fmt.Fprintf(w, "firmware    %d.%d, bootloader %d\n", ids[5], ids[4], ids[6])
	fmt.Fprintf(w, "status      0x%02X %s\n", st, bno055.SystemStatus(st))
	fmt.Fprintf(w, "error       0x%02X %s\n", se, bno055.SystemError(se))
	fmt.Fprintf(w, "self-test   mcu=%t gyr=%t mag=%t acc=%t\n",
		selfTest&0x08 != 0, selfTest&0x04 != 0, selfTest&0x02 != 0, selfTest&0x01 != 0)
	fmt.Fprintf(w, "calibration sys=%d gyr=%d acc=%d mag=%d\n", cal.System, cal.Gyro, cal.Accel, cal.Mag)
	return nil
}

func newReadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read <quantity|pose|all>",
		Short: "read mag, gyro, euler, accel, linear or gravity, the pose, or every output",
		Long: `read prints one of the six vector outputs. "pose" prints roll, pitch and yaw
from both the Euler output and the quaternion so the two can be compared;
"all" prints a full sample as JSON.`,
		Example: `  bnoctl read euler
  bnoctl read accel -n 10 -i 100ms
  bnoctl read pose
  bnoctl read all`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, _ := cmd.Flags().GetInt("count")
			interval, _ := cmd.Flags().GetDuration("interval")

			var q bno055.Quantity
			all, pose := args[0] == "all", args[0] == "pose"
			if !all && !pose {
				var err error
				if q, err = bno055.ParseQuantity(args[0]); err != nil {
					return err
				}
			}

			src, err := openDevice(cmd)
			if err != nil {
				return err
			}
			defer src.Close()

			for i := 0; i < count; i++ {
				if i > 0 {
					time.Sleep(interval)
				}
				if all {
					s, err := src.ReadSample()
					if err != nil {
						return err
					}
					b, _ := json.Marshal(s)
					fmt.Fprintln(cmd.OutOrStdout(), string(b))
					continue
				}
				if pose {
					if err := printPose(cmd.OutOrStdout(), src.Dev()); err != nil {
						return err
					}
					continue
				}
				v, err := src.Dev().Vector(q)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatVector(q, v))
			}
			return nil
		},
	}
	cmd.Flags().IntP("count", "n", 1, "number of readings")
	cmd.Flags().DurationP("interval", "i", 100*time.Millisecond, "time between readings")
	return cmd
}

func formatVector(q bno055.Quantity, v bno055.Vector) string {
	return fmt.Sprintf("%-8s x=%9.3f y=%9.3f z=%9.3f", q, v.X, v.Y, v.Z)
}

func printPose(w io.Writer, d *bno055.Dev) error {
	e, err := d.Vector(bno055.Euler)
	if err != nil {
		return err
	}
	q, err := d.Quaternion()
	if err != nil {
		return err
	}
	pe, pq := orientation.FromEuler(e), orientation.FromQuaternion(q)
	fmt.Fprintf(w, "euler    roll=%8.2f pitch=%8.2f yaw=%8.2f\n", pe.Roll, pe.Pitch, pe.Yaw)
	fmt.Fprintf(w, "quat     roll=%8.2f pitch=%8.2f yaw=%8.2f\n", pq.Roll, pq.Pitch, pq.Yaw)
	return nil
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "print every page 0 register with its name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := openDevice(cmd)
			if err != nil {
				return err
			}
			defer src.Close()

			regs, err := src.DumpRegisters()
			printDump(cmd.OutOrStdout(), regs, src.RegisterMap())
			return err
		},
	}
}

func printDump(w io.Writer, regs []sensors.RegisterValue, info []sensors.RegisterInfo) {
	names := make(map[byte]string, len(info))
	for _, r := range info {
		if a, err := strconv.ParseUint(strings.TrimPrefix(r.Address, "0x"), 16, 8); err == nil {
			names[byte(a)] = r.Name
		}
	}
	for _, r := range regs {
		fmt.Fprintf(w, "0x%02X  0x%02X  %08b  %s\n", r.Address, r.Value, r.Value, names[r.Address])
	}
}
