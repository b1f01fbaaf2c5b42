package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/anisan-cli/playtrack/color"
	"github.com/anisan-cli/playtrack/constant"
	"github.com/anisan-cli/playtrack/icon"
	"github.com/anisan-cli/playtrack/style"
	"github.com/charmbracelet/lipgloss"
)

// checkDependency exits with install instructions when the player binary is not in PATH.
func checkDependency(name string) {
	if _, err := exec.LookPath(name); err == nil {
		return
	}

	var install string
	switch runtime.GOOS {
	case constant.Darwin:
		install = "brew install " + name
	case constant.Linux:
		install = "sudo apt install " + name
	case constant.Windows:
		install = "scoop install " + name
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(color.HiRed).Render(fmt.Sprintf("%s Missing dependency", icon.Get(icon.Fail)))
	body := fmt.Sprintf("%q was not found in your PATH.", name)

	if install != "" {
		body += "\n\nTo install it, try running:\n  " + style.New().Bold(true).Foreground(color.Yellow).Render(install)
	}

	fmt.Println(box.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body)))
	os.Exit(1)
}
