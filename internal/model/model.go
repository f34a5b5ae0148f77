// Package model defines the records managed by the service together with the
// validated input shapes accepted on create and update.
package model

import "time"

// Contact is the data structure for a person that we know. Email and phone
// are unique across all contacts. The id and the timestamps are assigned by
// the store and never accepted on input.
type Contact struct {
	Id        int64     `json:"id"         db:"id"`
	Name      string    `json:"name"       db:"name"`
	Email     string    `json:"email"      db:"email"`
	Phone     string    `json:"phone"      db:"phone"`
	Address   string    `json:"address"    db:"address"`
	City      string    `json:"city"       db:"city"`
	State     string    `json:"state"      db:"state"`
	Zip       string    `json:"zip"        db:"zip"`
	Country   string    `json:"country"    db:"country"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ContactInput is the payload accepted when creating a contact. The binding
// tags mirror the schema rules: name 1-30 characters, a syntactically valid
// email, a phone of 10-13 characters. The location fields are free text and
// default to "Unknown" in the store.
type ContactInput struct {
	Name    string  `json:"name"    db:"name"    binding:"required,min=1,max=30"`
	Email   string  `json:"email"   db:"email"   binding:"required,email"`
	Phone   string  `json:"phone"   db:"phone"   binding:"required,min=10,max=13"`
	Address *string `json:"address" db:"address"`
	City    *string `json:"city"    db:"city"`
	State   *string `json:"state"   db:"state"`
	Zip     *string `json:"zip"     db:"zip"`
	Country *string `json:"country" db:"country"`
}

// ContactUpdate is the payload accepted when updating a contact. All fields
// are optional; only the ones present in the JSON are written to the store.
type ContactUpdate struct {
	Name    *string `json:"name"    binding:"omitempty,min=1,max=30"`
	Email   *string `json:"email"   binding:"omitempty,email"`
	Phone   *string `json:"phone"   binding:"omitempty,min=10,max=13"`
	Address *string `json:"address"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	Zip     *string `json:"zip"`
	Country *string `json:"country"`
}

// Todo is a single item on the todo list. Title and task are unique across
// all todos.
type Todo struct {
	Id        int64     `json:"id"         db:"id"`
	Title     string    `json:"title"      db:"title"`
	Task      string    `json:"task"       db:"task"`
	Done      bool      `json:"done"       db:"done"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TodoInput is the payload accepted when creating a todo. Done defaults to
// false when absent.
type TodoInput struct {
	Title string `json:"title" db:"title" binding:"required,min=1,max=100"`
	Task  string `json:"task"  db:"task"  binding:"required"`
	Done  bool   `json:"done"  db:"done"`
}

// TodoUpdate is the payload accepted when updating a todo.
type TodoUpdate struct {
	Title *string `json:"title" binding:"omitempty,min=1,max=100"`
	Task  *string `json:"task"`
	Done  *bool   `json:"done"`
}
