package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/elegantclip/elegantclip/internal/ipc"
)

// request sends one command to the running daemon and unwraps the
// response, turning error statuses into Go errors.
func request(command string, args map[string]interface{}) (interface{}, error) {
	resp, err := ipc.Send(paths.SocketFile, command, args)
	if err != nil {
		return nil, err
	}
	if !resp.IsOK() {
		return nil, fmt.Errorf("%s", resp.Message)
	}
	return resp.Data, nil
}

// decodeData re-marshals a response payload into a typed value. The
// client sees JSON-generic maps; this is the one place they become
// structs again.
func decodeData(data interface{}, target interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to re-encode response: %w", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// printJSON writes data as indented JSON on stdout.
func printJSON(data interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
