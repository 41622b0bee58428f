package dbquery_test

import (
	"context"
	"fmt"
	"log"

	"github.com/shrek82/dbquery"
	"github.com/shrek82/dbquery/logger"
)

// Example shows the basic flow: declare statements once, call them
// like functions.
func Example() {
	quiet := logger.NewStdLogger()
	quiet.SetLevel(logger.LogLevelSilent)

	db, err := dbquery.New("sqlite3", dbquery.Config{DSN: ":memory:"}, &dbquery.Options{Logger: quiet})
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	ctx := context.Background()

	createWorld := db.Exec("CREATE TABLE world (hello INTEGER)")
	if err := createWorld.Call(ctx); err != nil {
		log.Fatal(err)
	}

	insertIntoWorld := db.Manipulation("INSERT INTO world VALUES (?)")
	for _, v := range []int{42, 7, 99} {
		n, err := insertIntoWorld.Call(ctx, v)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println("Inserted rows:", n)
	}

	selectHello := db.Select("SELECT hello FROM world ORDER BY rowid")
	rows, err := selectHello.Call(ctx)
	if err != nil {
		log.Fatal(err)
	}
	for _, row := range rows {
		fmt.Println(row[0])
	}

	count, err := db.SelectOne("SELECT count(*) FROM world").Call(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Row count:", count)

	// Output:
	// Inserted rows: 1
	// Inserted rows: 1
	// Inserted rows: 1
	// 42
	// 7
	// 99
	// Row count: 3
}
