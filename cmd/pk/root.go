package main

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/facepk/internal/config"
	"github.com/saturnino-fabrica-de-software/facepk/internal/dataset"
	"github.com/saturnino-fabrica-de-software/facepk/internal/domain"
	"github.com/saturnino-fabrica-de-software/facepk/internal/face"
	"github.com/saturnino-fabrica-de-software/facepk/internal/matcher"
	"github.com/saturnino-fabrica-de-software/facepk/internal/service"
)

// cli carries state shared by every subcommand
type cli struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *domain.Registry

	photos     string
	recognizer string
	quiet      bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "pk",
		Short: "Guess the member, then see whether the face matcher agrees",
		Long: `pk trains a face recognizer from one photo folder per member and
predicts who is in a new photo. The same engine backs the HTTP server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&c.photos, "photos", "", "Photo root with one folder per member (default: $PHOTO_FOLDER)")
	root.PersistentFlags().StringVar(&c.recognizer, "recognizer", "", "Recognizer backend: lbph, opencv, deepface (default: $RECOGNIZER)")
	root.PersistentFlags().BoolVarP(&c.quiet, "quiet", "q", false, "Hide progress bars")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log skipped photos and training details")

	root.AddCommand(newDatasetCmd(c), newPredictCmd(c), newMembersCmd(c))

	return root
}

func (c *cli) init(cmd *cobra.Command) error {
	// .env file is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.photos != "" {
		root, err := filepath.Abs(c.photos)
		if err != nil {
			return err
		}
		cfg.PhotoFolder = root
	}
	if c.recognizer != "" {
		cfg.Recognizer = c.recognizer
	}
	c.cfg = cfg

	c.registry, err = cfg.Registry()
	if err != nil {
		return err
	}

	if c.verbose {
		c.logger = config.NewLogger(cfg.Environment, cmd.ErrOrStderr())
	} else {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return nil
}

// train builds a model from the photo root, drawing a progress bar over the
// candidate files unless quiet.
func (c *cli) train(ctx context.Context, progress io.Writer) (*matcher.Handle, error) {
	handle, err := c.newHandle()
	if err != nil {
		return nil, err
	}

	if !c.quiet {
		bar := progressbar.NewOptions(dataset.CountCandidates(c.cfg.PhotoFolder, c.registry),
			progressbar.OptionSetWriter(progress),
			progressbar.OptionSetDescription("Loading photos"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("photos"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
		)
		handle.OnFile(func(string) { _ = bar.Add(1) })
		defer func() { _ = bar.Finish() }()
	}

	if _, err := handle.Reload(ctx); err != nil {
		return nil, err
	}
	return handle, nil
}

// newHandle returns an untrained handle over the photo root
func (c *cli) newHandle() (*matcher.Handle, error) {
	trainer, err := face.NewTrainer(c.cfg)
	if err != nil {
		return nil, err
	}
	return matcher.NewHandle(trainer, c.registry, c.cfg.PhotoFolder, c.logger), nil
}

func (c *cli) game(handle *matcher.Handle, lang string) *service.GameService {
	if lang == "" {
		lang = c.cfg.Language
	}
	return service.NewGameService(handle, nil, c.logger).
		WithThreshold(c.cfg.Threshold(handle.Trainer().DefaultThreshold())).
		WithLanguage(lang).
		WithImportDir(c.cfg.ImportDir)
}
