package cli

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

var connectFlags struct {
	timeout time.Duration
}

var connectCmd = &cobra.Command{
	Use:   "connect [url]",
	Short: "Interactive UCI session against a running bridge",
	Long: `Connect to a bridge's WebSocket endpoint and talk UCI interactively.
Type commands and press Enter to send; engine output from all engines is
printed as it arrives. Ctrl+C to exit.

The url defaults to ws://localhost:8000/ws.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConnect,
}

func init() {
	connectCmd.Flags().DurationVarP(&connectFlags.timeout, "timeout", "t", 30*time.Second, "connection timeout")
	rootCmd.AddCommand(connectCmd)
}

func runConnect(cmd *cobra.Command, args []string) error {
	url := "ws://localhost:8000/ws"
	if len(args) == 1 {
		url = args[0]
	}

	dialer := websocket.Dialer{HandshakeTimeout: connectFlags.timeout}
	conn, resp, err := dialer.Dial(url, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("connection failed: %v (HTTP %d)", err, resp.StatusCode)
		}
		return fmt.Errorf("connection failed: %v", err)
	}
	defer func() { _ = conn.Close() }()

	fmt.Printf("Connected to %s. Type UCI commands, Ctrl+C to exit.\n", url)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	msgCh := make(chan string, 100)
	errCh := make(chan error, 1)
	go func() {
		for {
			typ, data, err := conn.ReadMessage()
			if err != nil {
				errCh <- err
				return
			}
			if typ == websocket.TextMessage {
				msgCh <- string(data)
			}
		}
	}()

	inputCh := make(chan string, 10)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			inputCh <- scanner.Text()
		}
		close(inputCh)
	}()

	for {
		select {
		case <-sigCh:
			fmt.Println("\nDisconnecting...")
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil
		case err := <-errCh:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				fmt.Println("Connection closed by server")
				return nil
			}
			return fmt.Errorf("read error: %v", err)
		case msg := <-msgCh:
			fmt.Printf("< %s\n", msg)
		case input, ok := <-inputCh:
			if !ok {
				return nil
			}
			if input == "" {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(input)); err != nil {
				return fmt.Errorf("send error: %v", err)
			}
		}
	}
}
