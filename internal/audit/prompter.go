package audit

import (
	"bufio"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

const (
	questionnaireBannerTitleConstant    = "📋 Codebase Audit Q&A"
	questionnaireBannerSubtitleConstant = "Answer a few questions to help prioritize findings."
	questionnaireInstructionsConstant   = "You can answer all at once (e.g., \"1A 2B 3C 4A\") or one by one."
	questionTemplateConstant            = "%d. %s\n"
	questionOptionTemplateConstant      = "   %c) %s\n"
	answerPromptConstant                = "Your answers: "
	questionnaireCompletionConstant     = "Thank you! Refining analysis based on your answers..."
	bannerWidthConstant                 = 60
)

var questionnaireBannerStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	Padding(0, 1).
	Width(bannerWidthConstant)

// IOAnswerPrompter renders the questionnaire to a writer and reads one line of answers from a reader.
type IOAnswerPrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewIOAnswerPrompter constructs a prompter from the provided reader and writer.
func NewIOAnswerPrompter(input io.Reader, output io.Writer) *IOAnswerPrompter {
	return &IOAnswerPrompter{reader: bufio.NewReader(input), writer: output}
}

// PromptAnswers writes every question, then reads a single answer line. End of input yields the text read so far.
func (prompter *IOAnswerPrompter) PromptAnswers(questions []Question) (string, error) {
	if writeError := prompter.writeQuestionnaire(questions); writeError != nil {
		return "", writeError
	}

	response, readError := prompter.reader.ReadString('\n')
	if readError != nil && readError != io.EOF {
		return "", readError
	}

	if prompter.writer != nil {
		if _, writeError := fmt.Fprintf(prompter.writer, "\n%s\n\n", questionnaireCompletionConstant); writeError != nil {
			return "", writeError
		}
	}
	return response, nil
}

func (prompter *IOAnswerPrompter) writeQuestionnaire(questions []Question) error {
	if prompter.writer == nil {
		return nil
	}

	banner := questionnaireBannerStyle.Render(questionnaireBannerTitleConstant + "\n" + questionnaireBannerSubtitleConstant)
	if _, writeError := fmt.Fprintf(prompter.writer, "\n%s\n\n%s\n\n", banner, questionnaireInstructionsConstant); writeError != nil {
		return writeError
	}

	for _, question := range questions {
		if _, writeError := fmt.Fprintf(prompter.writer, questionTemplateConstant, question.Number, question.Text); writeError != nil {
			return writeError
		}
		for _, option := range question.Options {
			if _, writeError := fmt.Fprintf(prompter.writer, questionOptionTemplateConstant, option.Letter, option.Text); writeError != nil {
				return writeError
			}
		}
		if _, writeError := io.WriteString(prompter.writer, "\n"); writeError != nil {
			return writeError
		}
	}

	_, writeError := io.WriteString(prompter.writer, answerPromptConstant)
	return writeError
}
