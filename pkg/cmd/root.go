package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"k8s.io/client-go/kubernetes"

	"github.com/kube-tools/ns-scale/pkg/scale"
)

var (
	kubeConfigPath = ""
	namespace      = ""
	scaleDown      = false
	scaleUp        = false
	dryRun         = false
	backup         = false
	restore        = false
	assumeYes      = false
	concurrency    = scale.DefaultConcurrency
	stateDir       = "."
)

var rootCmd = &cobra.Command{
	Use:   "ns-scale",
	Short: "Scales deployments in a Kubernetes namespace down and back up",
	Long: `Scales every deployment in a namespace down to zero replicas and later
back up to the replica counts observed before the scale down, for
maintenance windows, cost control, or incident mitigation.

The observed replica counts can be backed up to a per-namespace file so
that a later invocation restores them exactly. All changes are shown for
confirmation before anything is applied.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		restConfig, err := scale.LoadKubeConfig(kubeConfigPath)
		if err != nil {
			return err
		}

		log, err := newLogger(fmt.Sprintf("ns-scale-%s.log", namespace))
		if err != nil {
			return err
		}
		defer log.Sync()

		clientset, err := kubernetes.NewForConfig(restConfig)
		if err != nil {
			return err
		}

		var gate scale.ConfirmationGate = scale.NewPromptGate(cmd.OutOrStdout(), namespace)
		if assumeYes {
			gate = scale.AutoApproveGate{}
		}

		orch := scale.NewOrchestrator(
			scale.NewKubeClient(clientset),
			scale.NewFileStore(stateDir),
			gate,
			scale.Options{
				Namespace:   namespace,
				ScaleDown:   scaleDown,
				ScaleUp:     scaleUp,
				DryRun:      dryRun,
				Backup:      backup,
				Restore:     restore,
				Concurrency: concurrency,
			},
			log,
		)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := orch.Run(ctx); err != nil {
			log.Error("An error occurred", zap.Error(err))
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&kubeConfigPath, "kubeconfig", "", "Path to the kubeconfig file")
	rootCmd.Flags().StringVar(&namespace, "namespace", "", "Namespace to operate on")
	rootCmd.Flags().BoolVar(&scaleDown, "scale-down", false, "Scale down deployments to 0 replicas")
	rootCmd.Flags().BoolVar(&scaleUp, "scale-up", false, "Scale up deployments to the original replica count")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Simulate scaling operations without modifying deployments")
	rootCmd.Flags().BoolVar(&backup, "backup", false, "Backup the original replica counts to a file")
	rootCmd.Flags().BoolVar(&restore, "restore", false, "Restore the original replica counts from a file")
	rootCmd.Flags().BoolVar(&assumeYes, "yes", false, "Skip the confirmation prompt")
	rootCmd.Flags().IntVar(&concurrency, "concurrency", scale.DefaultConcurrency, "Maximum concurrent scale up operations")
	rootCmd.Flags().StringVar(&stateDir, "state-dir", ".", "Directory holding replica count backups")

	cobra.CheckErr(rootCmd.MarkFlagRequired("kubeconfig"))
	cobra.CheckErr(rootCmd.MarkFlagRequired("namespace"))
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
