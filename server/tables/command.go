package tables

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Mohammad-Mahdi82/NexusCafe/server/models"
)

var ErrUnknownCommand = errors.New("tables: unknown command")

// Command is one operator intent. The set is closed: only the types in this
// file implement it.
type Command interface {
	Kind() string
	isCommand()
}

type (
	Start struct {
		TableID string
		Config  models.GamingConfig
	}
	Pause  struct{ TableID string }
	Resume struct{ TableID string }
	Stop   struct{ TableID string }
	Reset  struct{ TableID string }

	AddProduct struct {
		TableID string
		Product models.Product
	}
	// RemoveProduct drops the first ordered product with ProductID.
	RemoveProduct struct {
		TableID   string
		ProductID string
	}

	// Transfer closes From and moves its whole balance onto To's tab.
	Transfer struct {
		From string
		To   string
	}

	AddTable    struct{}
	DeleteTable struct{ TableID string }
	Rename      struct {
		TableID string
		Name    string
	}
	// Load replaces the whole table list.
	Load struct{ Tables []models.TableSession }
)

func (Start) Kind() string         { return "start" }
func (Pause) Kind() string         { return "pause" }
func (Resume) Kind() string        { return "resume" }
func (Stop) Kind() string          { return "stop" }
func (Reset) Kind() string         { return "reset" }
func (AddProduct) Kind() string    { return "add_product" }
func (RemoveProduct) Kind() string { return "remove_product" }
func (Transfer) Kind() string      { return "transfer" }
func (AddTable) Kind() string      { return "add_table" }
func (DeleteTable) Kind() string   { return "delete_table" }
func (Rename) Kind() string        { return "rename" }
func (Load) Kind() string          { return "load" }

func (Start) isCommand()         {}
func (Pause) isCommand()         {}
func (Resume) isCommand()        {}
func (Stop) isCommand()          {}
func (Reset) isCommand()         {}
func (AddProduct) isCommand()    {}
func (RemoveProduct) isCommand() {}
func (Transfer) isCommand()      {}
func (AddTable) isCommand()      {}
func (DeleteTable) isCommand()   {}
func (Rename) isCommand()        {}
func (Load) isCommand()          {}

// envelope is the wire form used by the remote surfaces.
type envelope struct {
	Type      string                `json:"type"`
	TableID   string                `json:"tableId,omitempty"`
	Config    *models.GamingConfig  `json:"config,omitempty"`
	Product   *models.Product       `json:"product,omitempty"`
	ProductID string                `json:"productId,omitempty"`
	From      string                `json:"from,omitempty"`
	To        string                `json:"to,omitempty"`
	Name      string                `json:"name,omitempty"`
	Tables    []models.TableSession `json:"tables,omitempty"`
}

func EncodeCommand(cmd Command) ([]byte, error) {
	env := envelope{Type: cmd.Kind()}
	switch c := cmd.(type) {
	case Start:
		env.TableID = c.TableID
		env.Config = &c.Config
	case Pause:
		env.TableID = c.TableID
	case Resume:
		env.TableID = c.TableID
	case Stop:
		env.TableID = c.TableID
	case Reset:
		env.TableID = c.TableID
	case AddProduct:
		env.TableID = c.TableID
		env.Product = &c.Product
	case RemoveProduct:
		env.TableID = c.TableID
		env.ProductID = c.ProductID
	case Transfer:
		env.From, env.To = c.From, c.To
	case AddTable:
	case DeleteTable:
		env.TableID = c.TableID
	case Rename:
		env.TableID = c.TableID
		env.Name = c.Name
	case Load:
		env.Tables = c.Tables
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
	return json.Marshal(env)
}

func DecodeCommand(data []byte) (Command, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("tables: decode command: %w", err)
	}

	switch env.Type {
	case "start":
		if env.Config == nil {
			return nil, errors.New("tables: start requires a config")
		}
		return Start{TableID: env.TableID, Config: *env.Config}, nil
	case "pause":
		return Pause{TableID: env.TableID}, nil
	case "resume":
		return Resume{TableID: env.TableID}, nil
	case "stop":
		return Stop{TableID: env.TableID}, nil
	case "reset":
		return Reset{TableID: env.TableID}, nil
	case "add_product":
		if env.Product == nil {
			return nil, errors.New("tables: add_product requires a product")
		}
		return AddProduct{TableID: env.TableID, Product: *env.Product}, nil
	case "remove_product":
		return RemoveProduct{TableID: env.TableID, ProductID: env.ProductID}, nil
	case "transfer":
		return Transfer{From: env.From, To: env.To}, nil
	case "add_table":
		return AddTable{}, nil
	case "delete_table":
		return DeleteTable{TableID: env.TableID}, nil
	case "rename":
		return Rename{TableID: env.TableID, Name: env.Name}, nil
	case "load":
		return Load{Tables: env.Tables}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, env.Type)
	}
}
