package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/console-repair-tools/noruart/pkg/norimage"
)

var norCmd = &cobra.Command{
	Use:   "nor",
	Short: "Inspect and edit NOR dump files",
}

var norInfoCmd = &cobra.Command{
	Use:   "info <dump>",
	Short: "Print the identity fields of a NOR dump",
	Args:  cobra.ExactArgs(1),
	RunE:  runNorInfo,
}

var norSetCmd = &cobra.Command{
	Use:   "set <field> <dump> <value>",
	Short: "Edit one field of a NOR dump and save it in place",
	Long: `Edit one field of a NOR dump and save it in place.

Fields:
  serial     console serial number
  edition    disc or digital
  wifi-mac   WiFi MAC address (aa:bb:cc:dd:ee:ff)
  lan-mac    wired MAC address`,
	Args: cobra.ExactArgs(3),
	RunE: runNorSet,
}

func loadDump(path string) (*norimage.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read dump %q: %w", path, err)
	}
	img, err := norimage.Load(norimage.RetailLayout(), data)
	if err != nil {
		return nil, fmt.Errorf("dump %q: %w", path, err)
	}
	return img, nil
}

// saveDump writes the serialized image through a temp file plus rename
// so an interrupted save never truncates the only copy of a dump.
func saveDump(path string, img *norimage.Image) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".nordump-*")
	if err != nil {
		return fmt.Errorf("cannot create temp dump file: %w", err)
	}
	tmpName := tmp.Name()
	_, werr := tmp.Write(img.Serialize())
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		os.Remove(tmpName)
		if werr != nil {
			return fmt.Errorf("cannot write temp dump file: %w", werr)
		}
		return fmt.Errorf("cannot close temp dump file: %w", cerr)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("cannot replace dump %q: %w", path, err)
	}
	return nil
}

func runNorInfo(cmd *cobra.Command, args []string) error {
	img, err := loadDump(args[0])
	if err != nil {
		return err
	}

	// Individually failing fields should not hide the readable ones;
	// a repaired board often has some regions blanked.
	printField := func(label string, read func() (string, error)) {
		value, err := read()
		if err != nil {
			logger.Warn().Err(err).Msg("cannot read " + label)
			value = "<unreadable>"
		}
		fmt.Printf("%-20s %s\n", label+":", value)
	}

	printField("Console serial", img.SerialNumber)
	printField("Motherboard serial", img.MotherboardSerial)
	printField("Edition", func() (string, error) {
		ed, err := img.Edition()
		if err != nil {
			return "", err
		}
		return ed.String(), nil
	})
	printField("Variant", func() (string, error) { return img.ReadField(norimage.FieldVariant) })
	printField("WiFi MAC", img.WiFiMAC)
	printField("LAN MAC", img.LANMAC)
	printField("Manufacture date", func() (string, error) { return img.ReadField(norimage.FieldMfgDate) })
	return nil
}

func runNorSet(cmd *cobra.Command, args []string) error {
	field, path, value := args[0], args[1], args[2]

	img, err := loadDump(path)
	if err != nil {
		return err
	}

	switch field {
	case "serial":
		err = img.SetSerialNumber(value)
	case "edition":
		var ed norimage.Edition
		if ed, err = norimage.ParseEdition(value); err == nil {
			err = img.SetEdition(ed)
		}
	case "wifi-mac":
		err = img.WriteField(norimage.FieldWiFiMAC, value)
	case "lan-mac":
		err = img.WriteField(norimage.FieldLANMAC, value)
	default:
		return fmt.Errorf("unknown field %q (want serial, edition, wifi-mac or lan-mac)", field)
	}
	if err != nil {
		return err
	}

	if err := saveDump(path, img); err != nil {
		return err
	}
	logger.Info().Str("field", field).Str("dump", path).Msg("dump updated")
	return nil
}

func init() {
	norCmd.AddCommand(norInfoCmd, norSetCmd)
}
