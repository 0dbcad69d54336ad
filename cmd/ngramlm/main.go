// Command ngramlm trains an n-gram language model from a corpus file and
// queries it.
//
// The corpus holds one whitespace-tokenized sequence per line:
//
//	ngramlm prob corpus.txt the cat sat
//	ngramlm predict --order 4 corpus.txt the cat
//	ngramlm dump corpus.txt
//	ngramlm vocab corpus.txt th
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/npillmayer/ngram"
	"github.com/npillmayer/ngram/corpus"
	"github.com/npillmayer/ngram/dict"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func main() {
	cobra.CheckErr(NewCLI().Execute())
}

// NewCLI creates the root command.
func NewCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ngramlm",
		Short: "N-gram language model",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Disable usage printing on errors
			cmd.SilenceUsage = true
		},
	}
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "YAML file with training parameters")
	flags.Int("order", 3, "maximum n-gram length")
	flags.String("smoothing", ngram.DefaultSmoothing, "estimator: chen-goodman or maximum-likelihood")
	flags.Bool("compact", false, "compact the dictionary after training")
	flags.Int("min-freq", 0, "tokens occurring less often are out-of-vocabulary")

	probCmd := &cobra.Command{
		Use:   "prob CORPUS TOKEN...",
		Short: "Estimate the probabilities of all n-grams of a token sequence",
		Args:  cobra.MinimumNArgs(2),
		RunE:  probHandler,
	}
	predictCmd := &cobra.Command{
		Use:   "predict CORPUS TOKEN...",
		Short: "Predict the token following a context",
		Args:  cobra.MinimumNArgs(1),
		RunE:  predictHandler,
	}
	dumpCmd := &cobra.Command{
		Use:   "dump CORPUS",
		Short: "Print the arrays of the compacted dictionary",
		Args:  cobra.ExactArgs(1),
		RunE:  dumpHandler,
	}
	vocabCmd := &cobra.Command{
		Use:   "vocab CORPUS [PREFIX]",
		Short: "List the vocabulary, optionally restricted to a prefix",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  vocabHandler,
	}
	rootCmd.AddCommand(probCmd, predictCmd, dumpCmd, vocabCmd)
	return rootCmd
}

// paramsFromFlags reads the configuration file, if any, and lets explicitly
// set flags override its values.
func paramsFromFlags(cmd *cobra.Command) (ngram.Params, error) {
	var params ngram.Params
	flags := cmd.Flags()
	if path, _ := flags.GetString("config"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return params, err
		}
		defer f.Close()
		if params, err = ngram.LoadParams(f); err != nil {
			return params, err
		}
	}
	if flags.Changed("order") || params.Order == 0 {
		params.Order, _ = flags.GetInt("order")
	}
	if flags.Changed("smoothing") || params.Smoothing == "" {
		params.Smoothing, _ = flags.GetString("smoothing")
	}
	if flags.Changed("compact") {
		params.Compact, _ = flags.GetBool("compact")
	}
	if flags.Changed("min-freq") {
		params.MinFrequency, _ = flags.GetInt("min-freq")
	}
	return params, params.Validate()
}

func train(path string, params ngram.Params) (*ngram.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	stream, err := corpus.NewLineStream(f)
	if err != nil {
		return nil, err
	}
	return ngram.Train(stream, params)
}

func trainFromArgs(cmd *cobra.Command, args []string) (*ngram.Model, error) {
	params, err := paramsFromFlags(cmd)
	if err != nil {
		return nil, err
	}
	return train(args[0], params)
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	return table
}

func probHandler(cmd *cobra.Command, args []string) error {
	model, err := trainFromArgs(cmd, args)
	if err != nil {
		return err
	}
	tokens := args[1:]
	table := newTable(cmd.OutOrStdout(), "n-gram", "probability")
	for _, s := range model.Probabilities(tokens) {
		table.Append([]string{fmt.Sprint(s.NGram), strconv.FormatFloat(s.Probability, 'f', 6, 64)})
	}
	table.Render()
	fmt.Fprintf(cmd.OutOrStdout(), "perplexity: %.4f\n", model.Perplexity(tokens))
	return nil
}

func predictHandler(cmd *cobra.Command, args []string) error {
	model, err := trainFromArgs(cmd, args)
	if err != nil {
		return err
	}
	next, ok := model.PredictNext(args[1:])
	if !ok {
		return fmt.Errorf("model trained from %s is empty", args[0])
	}
	fmt.Fprintln(cmd.OutOrStdout(), next)
	return nil
}

func dumpHandler(cmd *cobra.Command, args []string) error {
	params, err := paramsFromFlags(cmd)
	if err != nil {
		return err
	}
	params.Compact = true
	model, err := train(args[0], params)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), model.Dictionary().Stats())
	if c, ok := model.Dictionary().(*dict.Compacted); ok {
		c.Dump(cmd.OutOrStdout())
	}
	return nil
}

func vocabHandler(cmd *cobra.Command, args []string) error {
	model, err := trainFromArgs(cmd, args)
	if err != nil {
		return err
	}
	prefix := ""
	if len(args) > 1 {
		prefix = args[1]
	}
	d := model.Dictionary()
	v := d.Vocabulary()
	table := newTable(cmd.OutOrStdout(), "token", "id", "count")
	for _, token := range v.WithPrefix(prefix) {
		id, _ := v.Lookup(token)
		count := d.Frequency([]string{token}, 0, 1)
		table.Append([]string{token, strconv.Itoa(id), strconv.Itoa(count)})
	}
	table.Render()
	return nil
}
