package cmd

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/abhisek/wikiquiz/internal/server"
)

var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "Run as an AWS Lambda function behind an API Gateway HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		gin.SetMode(gin.ReleaseMode)
		lambda.StartWithOptions(
			server.NewLambdaHandler(newServer(d).Handler()),
			lambda.WithContext(cmd.Context()),
		)
		return nil
	},
}
