package main

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/spf13/cobra"
)

type proxyFunc func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

func lambdaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lambda",
		Short: "Serve the webhook as an AWS Lambda behind API Gateway",
		RunE:  runLambda,
	}
	f := cmd.Flags()
	// Lambda has no durable local disk, so the ledger defaults to DynamoDB.
	addAppFlags(f, "dynamodb", "aws")
	addLogFlags(f, "json")
	return cmd
}

// proxyHandler converts API Gateway proxy events into requests for h.
func proxyHandler(h http.Handler) proxyFunc {
	return httpadapter.New(h).ProxyWithContext
}

func runLambda(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	h, cleanup, err := buildHandler(cmd.Context(), v)
	if err != nil {
		return err
	}
	defer cleanup()

	lambda.Start(proxyHandler(h.Router()))
	return nil
}
