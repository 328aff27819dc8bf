package quiz

import "github.com/pavelanni/slackquiz/internal/model"

// Fallback returns the fixed question used whenever generation fails.
// Each call returns a fresh copy.
func Fallback(lang string) model.Question {
	if lang == "ja" {
		return model.Question{
			Text: "AWS Lambda の最大実行時間はどのくらいですか？",
			Options: []model.Option{
				{Label: model.LabelA, Text: "5分"},
				{Label: model.LabelB, Text: "15分"},
				{Label: model.LabelC, Text: "30分"},
				{Label: model.LabelD, Text: "1時間"},
			},
			Correct:     model.LabelB,
			Explanation: "AWS Lambda 関数の最大実行時間は 15 分（900秒）です。",
		}
	}
	return model.Question{
		Text: "What is the maximum execution time of an AWS Lambda function?",
		Options: []model.Option{
			{Label: model.LabelA, Text: "5 minutes"},
			{Label: model.LabelB, Text: "15 minutes"},
			{Label: model.LabelC, Text: "30 minutes"},
			{Label: model.LabelD, Text: "1 hour"},
		},
		Correct:     model.LabelB,
		Explanation: "AWS Lambda functions can run for up to 15 minutes (900 seconds).",
	}
}
