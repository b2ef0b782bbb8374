package cli

import (
	"fmt"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"

	"syncell/internal/models"
	"syncell/pkg/canvas"
	"syncell/pkg/config"
	"syncell/pkg/errors"
	"syncell/pkg/export"
)

type generateOpts struct {
	configPath    string
	count         int
	seed          uint64
	height        int
	width         int
	image         string
	label         string
	manifest      string
	labelPreview  string
	offCenter     bool
	irregularEdge bool
	deletes       []int
}

func newGenerateCmd() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render random cells onto a canvas and write image, label and manifest",
		Long: `Generate samples cell specifications from the configured ranges, adds them to
a canvas in order and writes the 16-bit intensity image and 8-bit label image.

Flags override values from the config file. Slots listed with --delete are
removed after all cells are added; indices are 0-based, so --delete 0 removes
the cell labelled 1.`,
		Example: `  syncell generate --count 20 --seed 7
  syncell generate -c syncell.yaml --image out/cells.tif --label out/labels.png
  syncell generate --irregular-edge --delete 0,3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			opts.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runGenerate(cmd, cfg, opts.deletes)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "syncell.yaml", "config file (defaults apply when missing)")
	cmd.Flags().IntVarP(&opts.count, "count", "n", 0, "number of cells to add")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed (0 picks one from the clock)")
	cmd.Flags().IntVar(&opts.height, "height", 0, "canvas height in pixels")
	cmd.Flags().IntVar(&opts.width, "width", 0, "canvas width in pixels")
	cmd.Flags().StringVar(&opts.image, "image", "", "intensity image path (.png, .tif)")
	cmd.Flags().StringVar(&opts.label, "label", "", "label image path (.png, .tif)")
	cmd.Flags().StringVar(&opts.manifest, "manifest", "", "manifest path (empty string disables)")
	cmd.Flags().StringVar(&opts.labelPreview, "label-preview", "", "optional contrast-stretched label preview path")
	cmd.Flags().BoolVar(&opts.offCenter, "off-center", false, "place each Gaussian peak on a random foreground pixel")
	cmd.Flags().BoolVar(&opts.irregularEdge, "irregular-edge", false, "erode and speckle cell edges")
	cmd.Flags().IntSliceVar(&opts.deletes, "delete", nil, "slot indices to delete after adding")

	return cmd
}

// apply copies explicitly set flags over the loaded config.
func (o *generateOpts) apply(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("count") {
		cfg.Sample.Count = o.count
	}
	if f.Changed("seed") {
		cfg.Sample.Seed = o.seed
	}
	if f.Changed("height") {
		cfg.Canvas.Height = o.height
	}
	if f.Changed("width") {
		cfg.Canvas.Width = o.width
	}
	if f.Changed("image") {
		cfg.Output.Image = o.image
	}
	if f.Changed("label") {
		cfg.Output.Label = o.label
	}
	if f.Changed("manifest") {
		cfg.Output.Manifest = o.manifest
	}
	if f.Changed("off-center") {
		cfg.Render.OffCenter = o.offCenter
	}
	if f.Changed("irregular-edge") {
		cfg.Render.IrregularEdge = o.irregularEdge
	}
	if f.Changed("label-preview") {
		cfg.Output.LabelPreview = o.labelPreview
	}
}

func runGenerate(cmd *cobra.Command, cfg *config.Config, deletes []int) error {
	logger := loggerFromContext(cmd.Context())
	if cfg.Output.Verbose {
		logger.SetLevel(charmlog.DebugLevel)
	}
	seed := cfg.Sample.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	src := rand.NewSource(seed)

	cv, err := canvas.New(cfg.Canvas.Height, cfg.Canvas.Width, canvas.WithLogger(logger))
	if err != nil {
		return err
	}
	logger.Debug("canvas ready", "height", cfg.Canvas.Height, "width", cfg.Canvas.Width, "seed", seed)

	composite := startStage(logger, "composite")
	renderOpts := cfg.RenderOptions()
	renderOpts.Source = src
	samples := newSampler(cfg, src)

	for i := 0; i < cfg.Sample.Count; i++ {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		spec := samples.next()
		id, err := cv.AddSpec(spec, renderOpts)
		if errors.Is(err, errors.ErrCodeCapacityExceeded) {
			logger.Warn("stopping early", "added", i, "requested", cfg.Sample.Count)
			break
		}
		if err != nil {
			return fmt.Errorf("cell %d: %w", i+1, err)
		}
		logger.Debug("sampled cell", "id", id, "row", spec.Centroid.Row, "col", spec.Centroid.Col,
			"intensity", spec.Intensity, "size", spec.Size,
			"aspect", fmt.Sprintf("%.2f", spec.AspectRatio), "rotation", spec.Rotation)
	}

	for _, index := range deletes {
		if cv.Delete(index) {
			logger.Info("deleted cell", "index", index, "id", index+1)
		}
	}

	summary := cv.Describe()
	composite.done("composited cells", "live", summary.Live, "issued", summary.Issued)

	output := startStage(logger, "export")
	if err := export.Save(cfg.Output.Image, cv.Image()); err != nil {
		return err
	}
	if err := export.Save(cfg.Output.Label, cv.Label()); err != nil {
		return err
	}
	written := []string{cfg.Output.Image, cfg.Output.Label}

	if cfg.Output.LabelPreview != "" {
		if err := export.Save(cfg.Output.LabelPreview, export.LabelPreview(cv.Label())); err != nil {
			return err
		}
		written = append(written, cfg.Output.LabelPreview)
	}

	if cfg.Output.Manifest != "" {
		m := models.NewManifest(cv, seed)
		m.Image = cfg.Output.Image
		m.Label = cfg.Output.Label
		if err := m.Save(cfg.Output.Manifest); err != nil {
			return err
		}
		written = append(written, cfg.Output.Manifest)
	}

	output.done("wrote outputs", "files", strings.Join(written, ", "))
	logger.Info(summary.String())
	return nil
}
