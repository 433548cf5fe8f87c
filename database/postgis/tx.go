package postgis

import (
	"database/sql"
	"sync"
)

// TableTx bulk loads rows into one table within a transaction, using
// a COPY FROM STDIN statement fed from a separate goroutine.
type TableTx struct {
	Tx         *sql.Tx
	Spec       *TableSpec
	InsertStmt *sql.Stmt
	InsertSQL  string

	wg   sync.WaitGroup
	rows chan []interface{}
	mu   sync.Mutex
	err  error
}

func NewTableTx(pg *PostGIS, spec *TableSpec) (*TableTx, error) {
	tx, err := pg.Db.Begin()
	if err != nil {
		return nil, err
	}

	stmt := spec.CreateTableSQL()
	if _, err := tx.Exec(stmt); err != nil {
		tx.Rollback()
		return nil, &SQLError{stmt, err}
	}

	tt := &TableTx{
		Tx:        tx,
		Spec:      spec,
		InsertSQL: spec.CopySQL(),
		rows:      make(chan []interface{}, 64),
	}
	tt.InsertStmt, err = tx.Prepare(tt.InsertSQL)
	if err != nil {
		tx.Rollback()
		return nil, &SQLError{tt.InsertSQL, err}
	}

	tt.wg.Add(1)
	go tt.loop()
	return tt, nil
}

func (tt *TableTx) Insert(row []interface{}) error {
	if err := tt.getErr(); err != nil {
		return err
	}
	tt.rows <- row
	return nil
}

func (tt *TableTx) loop() {
	defer tt.wg.Done()
	for row := range tt.rows {
		if tt.getErr() != nil {
			continue
		}
		if _, err := tt.InsertStmt.Exec(row...); err != nil {
			tt.setErr(&SQLInsertError{SQLError{tt.InsertSQL, err}, row})
		}
	}
}

func (tt *TableTx) Commit() error {
	close(tt.rows)
	tt.wg.Wait()
	if err := tt.getErr(); err != nil {
		tt.Tx.Rollback()
		return err
	}
	// flush the COPY statement
	if _, err := tt.InsertStmt.Exec(); err != nil {
		tt.Tx.Rollback()
		return &SQLError{tt.InsertSQL, err}
	}
	if err := tt.InsertStmt.Close(); err != nil {
		tt.Tx.Rollback()
		return err
	}
	return tt.Tx.Commit()
}

func (tt *TableTx) Rollback() {
	close(tt.rows)
	tt.wg.Wait()
	tt.Tx.Rollback()
}

func (tt *TableTx) getErr() error {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	return tt.err
}

func (tt *TableTx) setErr(err error) {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	if tt.err == nil {
		tt.err = err
	}
}
