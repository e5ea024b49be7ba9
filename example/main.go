package main

import (
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/theflywheel/oahash"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Small table so the resize shows up in the debug log
	t, err := oahash.New[int, int](
		oahash.WithCapacity(8),
		oahash.WithLoadFactor(0.5),
		oahash.WithLogger(logger),
	)
	if err != nil {
		log.Fatalf("Failed to create table: %v", err)
	}

	fmt.Println("Table created successfully")

	// Insert some data
	for i := 0; i < 10; i++ {
		if _, _, err := t.Put(i, i*100); err != nil {
			log.Fatalf("Failed to insert key %d: %v", i, err)
		}
	}

	fmt.Printf("Inserted 10 key-value pairs, size=%d capacity=%d\n", t.Size(), t.Capacity())

	// Retrieve and display some values
	for i := 0; i < 15; i += 2 {
		value, found, _ := t.Get(i)
		if found {
			fmt.Printf("Key %d => Value %d\n", i, value)
		} else {
			fmt.Printf("Key %d not found\n", i)
		}
	}

	// Update a value
	prev, _, err := t.Put(2, 999)
	if err != nil {
		log.Fatalf("Failed to update key: %v", err)
	}
	value, _, _ := t.Get(2)
	fmt.Printf("Updated key 2 => Value %d (was %d)\n", value, prev)

	// Remove a few keys; their slots stay as tombstones
	for i := 0; i < 4; i++ {
		t.Remove(i)
	}
	fmt.Print(t.Stats())

	fmt.Println("Example completed successfully")
}
