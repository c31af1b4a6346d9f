/*
Copyright SUSE LLC.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

/*Package eyecandy provides common methods to print messages with emojis
 */
package eyecandy

import (
	"fmt"
	"os"
	"regexp"

	"github.com/kyokomi/emoji/v2"
	"golang.org/x/term"
)

var emojiRe = regexp.MustCompile(`:[a-zA-Z0-9-_+]+?:`)

// markers for the operations of a transaction
var markers = map[string]string{
	"install":       ":package:",
	"update":        ":arrow_up:",
	"uninstall":     ":wastebasket:",
	"mark-unneeded": ":zzz:",
}

func ESPrintf(emojisDisabled bool, format string, v ...interface{}) string {
	if emojisDisabled {
		return fmt.Sprintf(removeEmojiFromString(format), v...)
	}
	return emoji.Sprintf(format, v...)
}

func ESPrint(emojisDisabled bool, s string) string {
	if emojisDisabled {
		return fmt.Sprint(removeEmojiFromString(s))
	}
	return emoji.Sprint(s)
}

// Marker returns the emoji code for an operation name, e.g. "install", or
// an empty string for unknown operations.
func Marker(operation string) string {
	return markers[operation]
}

// Disabled reports whether emojis should be left out of output written to
// f: when asked to, or when f is not a terminal.
func Disabled(noEmojis bool, f *os.File) bool {
	return noEmojis || f == nil || !term.IsTerminal(int(f.Fd()))
}

func removeEmojiFromString(s string) string {
	return emojiRe.ReplaceAllString(s, "")
}
