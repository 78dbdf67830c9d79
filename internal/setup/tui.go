package setup

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"github.com/vadiminshakov/depthwatch/config"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

const title = "DEPTHWATCH CONFIG WIZARD"

// answers holds the raw wizard input.
type answers struct {
	source     string
	apiURL     string
	symbol     string
	depthLimit string
	interval   string
	output     string
	outputFile string
	fetchPrice bool
}

func defaultAnswers() answers {
	return answers{
		source:     config.SourceHTTP,
		apiURL:     "https://api.binance.com/api/v3",
		symbol:     "BNB_USDC",
		depthLimit: "10",
		interval:   "10",
		output:     config.OutputConsole,
		outputFile: "orderbook.log",
		fetchPrice: true,
	}
}

// RunTUI launches the terminal configuration wizard and writes the result to path.
func RunTUI(path string) error {
	a := defaultAnswers()

	// step 1: endpoint
	step("STEP 1: ENDPOINT")
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Where should the order book come from?\n"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Market data client").
				Options(
					huh.NewOption("Plain HTTP", config.SourceHTTP),
					huh.NewOption("Binance SDK", config.SourceBinance),
				).
				Value(&a.source),
			huh.NewInput().
				Title("API base URL").
				Description("e.g. https://api.binance.com/api/v3").
				Value(&a.apiURL).
				Validate(validateURL),
		),
	).Run()
	if err != nil {
		return err
	}

	// step 2: market
	step("STEP 2: MARKET")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Symbol").
				Description("BNBUSDC or BNB_USDC").
				Value(&a.symbol).
				Validate(validateSymbol),
			huh.NewInput().
				Title("Depth limit").
				Description("Levels per side (1-5000)").
				Value(&a.depthLimit).
				Validate(validateDepthLimit),
			huh.NewConfirm().
				Title("Fetch last trade price?").
				Value(&a.fetchPrice),
		),
	).Run()
	if err != nil {
		return err
	}

	// step 3: timing and output
	step("STEP 3: OUTPUT")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Poll interval, seconds").
				Value(&a.interval).
				Validate(validateInterval),
			huh.NewSelect[string]().
				Title("Write snapshots to").
				Options(
					huh.NewOption("Console", config.OutputConsole),
					huh.NewOption("File", config.OutputFile),
					huh.NewOption("Console and file", config.OutputBoth),
				).
				Value(&a.output),
			huh.NewInput().
				Title("Output file").
				Description("Appended to, never truncated").
				Value(&a.outputFile),
		),
	).Run()
	if err != nil {
		return err
	}

	step("FINAL CONFIRMATION")
	summary := fmt.Sprintf(
		"Source: %s\nURL: %s\nSymbol: %s\nDepth: %s\nInterval: %ss\nOutput: %s\n",
		a.source, a.apiURL, a.symbol, a.depthLimit, a.interval, a.output,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	var confirm bool
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save and start").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		return errors.New("setup cancelled by user")
	}

	tmp, err := a.configTmp()
	if err != nil {
		return err
	}
	data, err := config.Marshal(tmp)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to save config file")
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\n✓ Configuration saved to %s\nStarting watcher...", path)))
	time.Sleep(1500 * time.Millisecond) // small pause to read success message
	return nil
}

func step(name string) {
	fmt.Print("\033[H\033[2J") // clear screen
	fmt.Println(headerStyle.Render(title))
	fmt.Println(stepStyle.Render(name))
}

func (a answers) configTmp() (config.ConfigTmp, error) {
	depth, err := strconv.Atoi(strings.TrimSpace(a.depthLimit))
	if err != nil {
		return config.ConfigTmp{}, errors.Wrap(err, "depth limit")
	}
	interval, err := strconv.Atoi(strings.TrimSpace(a.interval))
	if err != nil {
		return config.ConfigTmp{}, errors.Wrap(err, "poll interval")
	}
	fetchPrice := a.fetchPrice

	tmp := config.ConfigTmp{
		APIURL:              strings.TrimSpace(a.apiURL),
		Symbol:              strings.TrimSpace(a.symbol),
		DepthLimit:          &depth,
		PollIntervalSeconds: &interval,
		Source:              a.source,
		Output:              a.output,
		FetchPrice:          &fetchPrice,
	}
	if a.output != config.OutputConsole {
		tmp.OutputFile = strings.TrimSpace(a.outputFile)
	}
	return tmp, nil
}

func validateURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("must be an http(s) URL")
	}
	return nil
}

func validateSymbol(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("symbol cannot be empty")
	}
	for _, r := range strings.ToUpper(s) {
		if r == '_' || r == '/' || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			continue
		}
		return errors.Errorf("invalid character %q", r)
	}
	return nil
}

func validateDepthLimit(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return errors.New("must be a whole number")
	}
	if n < 1 || n > 5000 {
		return errors.New("must be between 1 and 5000")
	}
	return nil
}

func validateInterval(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return errors.New("must be a whole number of seconds")
	}
	if n <= 0 {
		return errors.New("must be positive")
	}
	return nil
}
