package markdown

import (
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"
)

var blankLines = regexp.MustCompile(`\n{2,}`)

// ToSpeechText 把模型输出的 markdown 转成适合朗读的纯文本。
func ToSpeechText(markdown string) string {
	if strings.TrimSpace(markdown) == "" {
		return ""
	}

	parser := blackfriday.New(blackfriday.WithExtensions(blackfriday.CommonExtensions))
	root := parser.Parse([]byte(markdown))

	var builder strings.Builder
	root.Walk(func(node *blackfriday.Node, entering bool) blackfriday.WalkStatus {
		switch node.Type {
		case blackfriday.Text, blackfriday.Code:
			if entering {
				builder.Write(node.Literal)
			}
		case blackfriday.CodeBlock:
			if entering {
				builder.Write(node.Literal)
				builder.WriteString("\n")
			}
		case blackfriday.Softbreak, blackfriday.Hardbreak:
			if entering {
				builder.WriteString(" ")
			}
		case blackfriday.Paragraph, blackfriday.Heading, blackfriday.Item, blackfriday.TableRow:
			if !entering {
				builder.WriteString("\n")
			}
		case blackfriday.TableCell:
			if !entering {
				builder.WriteString(" ")
			}
		}
		return blackfriday.GoToNext
	})

	text := blankLines.ReplaceAllString(builder.String(), "\n")
	return strings.TrimSpace(text)
}
