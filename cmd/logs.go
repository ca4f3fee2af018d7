package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/hpcloud/tail"
	"github.com/spf13/cobra"

	"github.com/tabletools/core/tui/theme"
)

// NewLogsCmd creates the `logs` command.
func NewLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Display logs written by Tabletools commands",
		Long: `Shows log output from .table/logs/ in the current directory. By default
prints today's logs from every component; use --component to filter.

Examples:
  # Show today's logs
  table logs

  # Follow new log lines as they are written
  table logs -f

  # Only the realtime component, last 50 lines
  table logs --component realtime --tail 50
`,
		RunE: runLogsE,
	}

	cmd.Flags().BoolP("follow", "f", false, "Follow log output")
	cmd.Flags().Int("tail", -1, "Number of lines to show from the end of each log")
	cmd.Flags().StringSlice("component", nil, "Filter by component names (comma-separated)")
	return cmd
}

func runLogsE(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	logDir := filepath.Join(cwd, ".table", "logs")

	components, _ := cmd.Flags().GetStringSlice("component")
	files, err := todayLogFiles(logDir, components)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println(theme.DefaultTheme.Muted.Render("No logs found in " + logDir))
		return nil
	}

	tailN, _ := cmd.Flags().GetInt("tail")
	follow, _ := cmd.Flags().GetBool("follow")

	if !follow {
		for _, f := range files {
			if err := printLogFile(f, tailN); err != nil {
				return err
			}
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lines := make(chan string, 256)
	var wg sync.WaitGroup
	var tails []*tail.Tail

	for _, f := range files {
		t, err := tail.TailFile(f, tail.Config{
			Follow:    true,
			ReOpen:    true,
			MustExist: true,
			Location:  &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
			Logger:    tail.DiscardingLogger,
		})
		if err != nil {
			return fmt.Errorf("failed to tail %s: %w", f, err)
		}
		tails = append(tails, t)

		wg.Add(1)
		go func(t *tail.Tail) {
			defer wg.Done()
			for line := range t.Lines {
				if line.Err != nil {
					continue
				}
				select {
				case lines <- line.Text:
				case <-ctx.Done():
					return
				}
			}
		}(t)
	}

	go func() {
		<-ctx.Done()
		for _, t := range tails {
			_ = t.Stop()
		}
		wg.Wait()
		close(lines)
	}()

	for line := range lines {
		fmt.Println(line)
	}
	return nil
}

// todayLogFiles returns log files for today's date, filtered by component
// names when given. Log files are named <component>-<date>.log.
func todayLogFiles(dir string, components []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	dateSuffix := "-" + time.Now().Format("2006-01-02") + ".log"

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, dateSuffix) {
			continue
		}
		component := strings.TrimSuffix(name, dateSuffix)
		if len(components) > 0 && !containsString(components, component) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func printLogFile(path string, tailN int) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if tailN < 0 {
		_, err = io.Copy(os.Stdout, f)
		return err
	}

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if len(lines) > tailN {
			lines = lines[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}
