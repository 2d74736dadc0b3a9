package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/koustreak/sqlgate/internal/config"
	"github.com/koustreak/sqlgate/internal/database"
	"github.com/koustreak/sqlgate/internal/errs"
	"github.com/koustreak/sqlgate/internal/gateway"
)

type queryRequest struct {
	Query    string           `json:"query"`
	Params   []any            `json:"params"`
	DBConfig *config.Override `json:"db_config"`
}

type databaseRequest struct {
	DatabaseName string           `json:"database_name"`
	DBConfig     *config.Override `json:"db_config"`
}

type tableRequest struct {
	TableName  string           `json:"table_name"`
	ColumnsDef string           `json:"columns_def"`
	Data       map[string]any   `json:"data"`
	Condition  string           `json:"condition"`
	Params     []any            `json:"params"`
	DBConfig   *config.Override `json:"db_config"`
}

// decode reads a JSON body into v. An empty body leaves v untouched.
// Numbers are kept as json.Number so integers survive unchanged.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errs.Wrap(errs.ErrKindInvalidInput, "malformed request body", err)
	}
	return nil
}

// normalize converts json.Number values to int64 when they are integral and
// float64 otherwise.
func normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = normalize(t[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, x := range t {
			out[k] = normalize(x)
		}
		return out
	default:
		return v
	}
}

func params(in []any) []any {
	if len(in) == 0 {
		return nil
	}
	return normalize(in).([]any)
}

func values(in map[string]any) database.Values {
	out := make(database.Values, len(in))
	for k, v := range in {
		out[database.Fragment(k)] = normalize(v)
	}
	return out
}

func (s *Server) handleExecuteQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, newErrorBody(err))
		return
	}

	res, err := s.gw.ExecuteQuery(r.Context(), gateway.QueryInput{
		Query:  req.Query,
		Params: params(req.Params),
		Config: req.DBConfig,
	})
	if err != nil {
		body := newErrorBody(err)
		body.Query = req.Query
		writeError(w, body)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	var req databaseRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, newErrorBody(err))
		return
	}

	res, err := s.gw.ListTables(r.Context(), gateway.ListTablesInput{
		Database: database.Fragment(req.DatabaseName),
		Config:   req.DBConfig,
	})
	if err != nil {
		writeError(w, newErrorBody(err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDescribeTable(w http.ResponseWriter, r *http.Request) {
	var req tableRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, newErrorBody(err))
		return
	}

	res, err := s.gw.DescribeTable(r.Context(), gateway.DescribeTableInput{
		Table:  database.Fragment(req.TableName),
		Config: req.DBConfig,
	})
	if err != nil {
		writeTableError(w, err, req.TableName)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCreateTable(w http.ResponseWriter, r *http.Request) {
	var req tableRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, newErrorBody(err))
		return
	}

	res, err := s.gw.CreateTable(r.Context(), gateway.CreateTableInput{
		Table:   database.Fragment(req.TableName),
		Columns: database.Fragment(req.ColumnsDef),
		Config:  req.DBConfig,
	})
	if err != nil {
		writeTableError(w, err, req.TableName)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleInsertData(w http.ResponseWriter, r *http.Request) {
	var req tableRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, newErrorBody(err))
		return
	}

	res, err := s.gw.InsertData(r.Context(), gateway.InsertInput{
		Table:  database.Fragment(req.TableName),
		Data:   values(req.Data),
		Config: req.DBConfig,
	})
	if err != nil {
		writeTableError(w, err, req.TableName)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleUpdateData(w http.ResponseWriter, r *http.Request) {
	var req tableRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, newErrorBody(err))
		return
	}

	res, err := s.gw.UpdateData(r.Context(), gateway.UpdateInput{
		Table:     database.Fragment(req.TableName),
		Data:      values(req.Data),
		Condition: database.Fragment(req.Condition),
		Params:    params(req.Params),
		Config:    req.DBConfig,
	})
	if err != nil {
		writeTableError(w, err, req.TableName)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDeleteData(w http.ResponseWriter, r *http.Request) {
	var req tableRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, newErrorBody(err))
		return
	}

	res, err := s.gw.DeleteData(r.Context(), gateway.DeleteInput{
		Table:     database.Fragment(req.TableName),
		Condition: database.Fragment(req.Condition),
		Params:    params(req.Params),
		Config:    req.DBConfig,
	})
	if err != nil {
		writeTableError(w, err, req.TableName)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleUseDatabase(w http.ResponseWriter, r *http.Request) {
	var req databaseRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, newErrorBody(err))
		return
	}

	res, err := s.gw.UseDatabase(r.Context(), gateway.UseDatabaseInput{
		Database: req.DatabaseName,
		Config:   req.DBConfig,
	})
	if err != nil {
		writeError(w, newErrorBody(err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func writeTableError(w http.ResponseWriter, err error, table string) {
	body := newErrorBody(err)
	body.Table = table
	writeError(w, body)
}
