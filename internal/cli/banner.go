package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// displayWelcomeBanner prints the banner shown when the interactive chat starts
func displayWelcomeBanner(w io.Writer, version string) {
	banner := `
   ____      _     _ ____        _
  / ___|_ __(_) __| | __ )  ___ | |_
 | |  _| '__| |/ _' |  _ \ / _ \| __|
 | |_| | |  | | (_| | |_) | (_) | |_
  \____|_|  |_|\__,_|____/ \___/ \__|
`
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Fprintln(w, green(banner))
	fmt.Fprintln(w, blue(fmt.Sprintf("NZ Electricity Chat (v%s)", version)))
}
