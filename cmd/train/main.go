// Package main provides the model training CLI: fit a classifier on a CSV
// of historical odds outcomes, evaluate it, and register it for serving.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/edge-finder/internal/config"
	"github.com/yourusername/edge-finder/internal/database"
	"github.com/yourusername/edge-finder/internal/features"
	"github.com/yourusername/edge-finder/internal/logger"
	"github.com/yourusername/edge-finder/internal/model"
	"github.com/yourusername/edge-finder/internal/models"
	"github.com/yourusername/edge-finder/internal/repository"
)

var (
	configFile string
	appLog     *logrus.Logger
	cfg        *config.Config
	db         *database.DB
	repos      *repository.Repositories

	trainCSV      string
	trainTarget   string
	trainName     string
	trainVersion  string
	trainType     string
	trainStrategy string
	trainFolds    int
	trainScrub    bool
)

var rootCmd = &cobra.Command{
	Use:   "train",
	Short: "Train and manage odds prediction models",
	Long:  `Fits classifiers on historical odds data, evaluates them with cross-validation, and registers them for the recommendation API.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		appLog = logger.NewLogger(cfg.App.LogLevel)

		db, err = database.Initialize(context.Background(), cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		repos, err = repository.NewRepositories(db)
		if err != nil {
			return fmt.Errorf("failed to initialize repositories: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit a classifier on a CSV and register it",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrain(cmd.Context())
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered models",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd.Context())
	},
}

var activateCmd = &cobra.Command{
	Use:   "activate <name>",
	Short: "Mark a registered model as the active one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runActivate(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")

	trainCmd.Flags().StringVar(&trainCSV, "csv", "", "Path to the training CSV (required)")
	trainCmd.Flags().StringVar(&trainTarget, "target", "outcome", "Name of the binary label column")
	trainCmd.Flags().StringVar(&trainName, "name", "", "Model name to register (required)")
	trainCmd.Flags().StringVar(&trainVersion, "version", "v1", "Model version label")
	trainCmd.Flags().StringVar(&trainType, "type", model.TypeLogistic, "Classifier type: logistic_regression or random_forest")
	trainCmd.Flags().StringVar(&trainStrategy, "missing", string(features.StrategyMean), "Missing value strategy: mean, median, mode, zero or drop")
	trainCmd.Flags().IntVar(&trainFolds, "folds", 5, "Cross-validation folds (0 disables)")
	trainCmd.Flags().BoolVar(&trainScrub, "scrub-urls", true, "Strip URL values from string columns before fitting")
	trainCmd.MarkFlagRequired("csv")
	trainCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(trainCmd, listCmd, activateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runTrain(ctx context.Context) error {
	strategy := features.MissingValueStrategy(trainStrategy)
	if !strategy.Valid() {
		return fmt.Errorf("unknown missing value strategy %q", trainStrategy)
	}

	data, err := features.LoadCSV(trainCSV)
	if err != nil {
		return fmt.Errorf("failed to read training data: %w", err)
	}
	if !data.HasColumn(trainTarget) {
		return fmt.Errorf("training data has no %q column", trainTarget)
	}
	appLog.WithFields(logrus.Fields{
		"rows":    data.NumRows(),
		"columns": data.NumColumns(),
	}).Info("Training data loaded")

	if trainScrub {
		features.ScrubURLs(data)
	}
	features.Enrich(data)

	pipeline, err := features.FitPipeline(data, strategy, trainTarget)
	if err != nil {
		return fmt.Errorf("failed to fit preprocessing pipeline: %w", err)
	}

	X, err := data.Matrix(pipeline.FeatureColumns)
	if err != nil {
		return fmt.Errorf("failed to build feature matrix: %w", err)
	}
	labelMatrix, err := data.Matrix([]string{trainTarget})
	if err != nil {
		return fmt.Errorf("failed to read labels: %w", err)
	}
	y := make([]float64, len(labelMatrix))
	for i, row := range labelMatrix {
		y[i] = row[0]
	}

	opts := model.DefaultOptions()
	opts.Iterations = cfg.Model.TrainIterations
	opts.LearningRate = cfg.Model.TrainLearningRate
	opts.Trees = cfg.Model.ForestTrees
	opts.MaxDepth = cfg.Model.ForestMaxDepth

	var metrics *model.Metrics
	if trainFolds > 1 {
		metrics, err = model.CrossValidate(trainType, opts, X, y, trainFolds, opts.Seed)
		if err != nil {
			return fmt.Errorf("cross-validation failed: %w", err)
		}
		appLog.WithFields(logrus.Fields{
			"accuracy": metrics.Accuracy,
			"f1":       metrics.F1,
			"folds":    trainFolds,
		}).Info("Cross-validation complete")
	}

	clf, err := model.New(trainType, opts)
	if err != nil {
		return err
	}
	if err := clf.Fit(X, y); err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	registry, err := model.NewRegistry(cfg.Model.RegistryDir)
	if err != nil {
		return fmt.Errorf("failed to open model registry: %w", err)
	}
	artifact, err := registry.Save(trainName, trainVersion, clf, pipeline, metrics)
	if err != nil {
		return fmt.Errorf("failed to save model: %w", err)
	}
	path, err := registry.Path(trainName)
	if err != nil {
		return err
	}

	var metricsJSON json.RawMessage
	if metrics != nil {
		metricsJSON, _ = json.Marshal(metrics)
	}
	hyper, _ := json.Marshal(opts)

	now := time.Now().UTC()
	info := &models.ModelInfo{
		ID:              uuid.New(),
		Name:            trainName,
		Version:         trainVersion,
		ModelType:       clf.Type(),
		Path:            path,
		Metrics:         metricsJSON,
		Hyperparameters: hyper,
		TrainedAt:       artifact.TrainedAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := repos.Model.Create(ctx, info); err != nil {
		return fmt.Errorf("failed to register model: %w", err)
	}

	fmt.Printf("Trained %s model %q (%s) on %d samples\n", clf.Type(), trainName, trainVersion, len(y))
	if metrics != nil {
		fmt.Printf("  accuracy=%.4f precision=%.4f recall=%.4f f1=%.4f\n",
			metrics.Accuracy, metrics.Precision, metrics.Recall, metrics.F1)
	}
	fmt.Printf("  saved to %s\n", path)
	return nil
}

func runList(ctx context.Context) error {
	infos, err := repos.Model.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}
	if len(infos) == 0 {
		fmt.Println("No models registered")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tTYPE\tTRAINED\tACTIVE")
	for _, info := range infos {
		active := ""
		if info.Active {
			active = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			info.Name, info.Version, info.ModelType,
			info.TrainedAt.Format(time.RFC3339), active)
	}
	return w.Flush()
}

func runActivate(ctx context.Context, name string) error {
	if _, err := repos.Model.GetByName(ctx, name); err != nil {
		return fmt.Errorf("model %q is not registered: %w", name, err)
	}
	if err := repos.Model.SetActive(ctx, name); err != nil {
		return fmt.Errorf("failed to activate model: %w", err)
	}
	fmt.Printf("Model %q is now active\n", name)
	return nil
}
