package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	app "inspection-station/internal/application"
)

// runConsole — консоль оператора: штрихкод со сканера приходит строкой,
// действия — командами. Запрещённые по текущему состоянию действия
// отклоняются с причиной из GateState.
func runConsole(ctx context.Context, workflow *app.WorkflowService, logger *zap.Logger) {
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		printHelp()
		for scanner.Scan() {
			select {
			case <-ctx.Done():
				return
			default:
			}
			handleLine(ctx, workflow, strings.TrimSpace(scanner.Text()), logger)
		}
	}()
}

func handleLine(ctx context.Context, workflow *app.WorkflowService, line string, logger *zap.Logger) {
	if line == "" {
		return
	}

	gate := workflow.GateState()

	switch line {
	case "help":
		printHelp()
	case "state":
		fmt.Printf("state: %s\n", workflow.State())
	case "capture":
		if !gate.Capture {
			fmt.Println(gate.CaptureReason)
			return
		}
		report(workflow.TriggerCapture())
	case "next":
		if !gate.Next {
			fmt.Println(gate.NextReason)
			return
		}
		report(workflow.Advance())
	case "repeat":
		if !gate.Repeat {
			fmt.Println(gate.RepeatReason)
			return
		}
		report(workflow.Repeat())
	case "pass", "fail":
		if !gate.Override {
			fmt.Println(gate.OverrideReason)
			return
		}
		value := 0
		if line == "pass" {
			value = 1
		}
		report(workflow.ApplyOverride(value))
	case "submit":
		report(workflow.Submit())
	case "abort":
		workflow.Abort()
		fmt.Println("session aborted")
	default:
		// Всё остальное считаем штрихкодом со сканера.
		if err := workflow.SubmitBarcode(ctx, line); err != nil {
			fmt.Printf("barcode rejected: %v\n", err)
			logger.Warn("barcode rejected", zap.String("barcode", line), zap.Error(err))
			return
		}
		fmt.Printf("barcode accepted: %s\n", line)
	}
}

func report(err error) {
	if err != nil {
		fmt.Printf("rejected: %v\n", err)
		return
	}
	fmt.Println("ok")
}

func printHelp() {
	fmt.Println("scan a barcode or type: capture | next | repeat | pass | fail | submit | abort | state | help")
}
