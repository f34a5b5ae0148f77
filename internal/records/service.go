// Package records implements the record-management REST API: CRUD over the
// contact and todo tables of the relational store.
package records

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/celestialHunt/frontdesk/internal/config"
	"github.com/celestialHunt/frontdesk/internal/model"
)

// unknown is the value stored for optional contact location fields that the
// client did not supply.
const unknown = "Unknown"

// db is a handle to the database.
var db *sqlx.DB

// insertContact is a prepared statement for creating a contact on the database.
var insertContact *sqlx.NamedStmt

// selectContactWhereId is a prepared statement for selecting a contact with a given id.
var selectContactWhereId *sqlx.Stmt

// deleteContactWhereId is a prepared statement for deleting a contact with a given id.
var deleteContactWhereId *sqlx.Stmt

// insertTodo is a prepared statement for creating a todo on the database.
var insertTodo *sqlx.NamedStmt

// selectTodoWhereId is a prepared statement for selecting a todo with a given id.
var selectTodoWhereId *sqlx.Stmt

// deleteTodoWhereId is a prepared statement for deleting a todo with a given id.
var deleteTodoWhereId *sqlx.Stmt

// CreateDatabase initializes and returns a database connection with the
// specified connection parameters.
func CreateDatabase(cfg config.Database) *sql.DB {
	sqlDB, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		log.Fatal(err)
	}
	return sqlDB
}

// SetupDatabaseWrapper initializes the sqlx database wrapper with the specified sql database. It
// then prepares all statements. The database argument can be a real database for production use
// or a mock database within unit tests.
func SetupDatabaseWrapper(sqlDB *sql.DB) {
	var err error
	db = sqlx.NewDb(sqlDB, "mysql")

	// Prepared statements offer a significant speed increase if executed many times.
	insertContact, err = db.PrepareNamed(`
		INSERT INTO contacts (name, email, phone, address, city, state, zip, country)
		VALUES (:name, :email, :phone, :address, :city, :state, :zip, :country)
	`)
	if err != nil {
		log.Fatal(err)
	}
	selectContactWhereId, err = db.Preparex(`
		SELECT * FROM contacts WHERE id = ?
	`)
	if err != nil {
		log.Fatal(err)
	}
	deleteContactWhereId, err = db.Preparex(`
		DELETE FROM contacts WHERE id = ?
	`)
	if err != nil {
		log.Fatal(err)
	}
	insertTodo, err = db.PrepareNamed(`
		INSERT INTO todos (title, task, done)
		VALUES (:title, :task, :done)
	`)
	if err != nil {
		log.Fatal(err)
	}
	selectTodoWhereId, err = db.Preparex(`
		SELECT * FROM todos WHERE id = ?
	`)
	if err != nil {
		log.Fatal(err)
	}
	deleteTodoWhereId, err = db.Preparex(`
		DELETE FROM todos WHERE id = ?
	`)
	if err != nil {
		log.Fatal(err)
	}
}

// SetupHttpRouter initializes the REST API router and registers all endpoints.
func SetupHttpRouter() *gin.Engine {
	var router *gin.Engine
	if strings.EqualFold(os.Getenv("GIN_LOGGING"), "off") {
		router = gin.New()
		router.Use(gin.Recovery())
	} else {
		router = gin.Default()
	}
	router.GET("/contact", findContacts)
	router.POST("/contact", createContact)
	router.GET("/contact/:id", findContactByID)
	router.PUT("/contact/:id", updateContactByID)
	router.DELETE("/contact/:id", deleteContactByID)
	router.GET("/todo", findTodos)
	router.POST("/todo", createTodo)
	router.GET("/todo/:id", findTodoByID)
	router.PUT("/todo/:id", updateTodoByID)
	router.DELETE("/todo/:id", deleteTodoByID)
	return router
}

// isDuplicateEntry reports whether the database rejected a statement because
// of a violated unique constraint (MySQL error 1062, ER_DUP_ENTRY).
func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

// orUnknown dereferences an optional input field, substituting the default
// for absent values.
func orUnknown(s *string) string {
	if s == nil {
		return unknown
	}
	return *s
}

// findContacts responds with the list of all contacts as JSON.
//
// Example REST API call:
//
//	> curl "http://localhost:8080/contact"
func findContacts(c *gin.Context) {
	contacts := []model.Contact{}
	err := db.Select(&contacts, "SELECT * FROM contacts")
	if err != nil {
		log.Panicln(err)
	}
	c.IndentedJSON(http.StatusOK, contacts)
}

// createContact inserts the contact specified in the request's JSON into the database. It
// responds with the full contact data including the newly assigned id and timestamps.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contact --request "POST" --include --header "Content-Type: application/json" --data '{"name": "Hans Wurst", "email": "hans@example.com", "phone": "0815471108154", "city": "Munich"}'
func createContact(c *gin.Context) {
	var input model.ContactInput
	if err := c.BindJSON(&input); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	newContact := model.Contact{
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Address: orUnknown(input.Address),
		City:    orUnknown(input.City),
		State:   orUnknown(input.State),
		Zip:     orUnknown(input.Zip),
		Country: orUnknown(input.Country),
	}
	result, err := insertContact.Exec(&newContact)
	if err != nil {
		if isDuplicateEntry(err) {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				gin.H{"message": "a contact with that email or phone already exists"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			gin.H{"message": "an error occurred while creating the contact"})
		return
	}
	id, err := result.LastInsertId()
	if err != nil {
		log.Panicln(err)
	}

	// Re-select the row so that the response carries the store-assigned
	// timestamps as well as the id.
	var contacts []model.Contact
	if err := selectContactWhereId.Select(&contacts, id); err != nil {
		log.Panicln(err)
	}
	if len(contacts) == 0 {
		log.Panicln("contact vanished right after insert, id", id)
	}
	c.IndentedJSON(http.StatusCreated, contacts[0])
}

// findContactByID locates the contact whose ID value matches the id parameter of the request URL,
// then returns that contact as a response.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contact/56
func findContactByID(c *gin.Context) {
	id := c.Param("id")
	_, errConv := strconv.Atoi(id)
	if errConv != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "invalid id parameter"})
		return
	}

	var contacts []model.Contact
	err := selectContactWhereId.Select(&contacts, id)
	if err != nil {
		log.Panicln(err)
	}
	if len(contacts) == 0 {
		c.IndentedJSON(http.StatusNotFound, gin.H{"message": "contact not found"})
	} else {
		c.IndentedJSON(http.StatusOK, contacts[0])
	}
}

// updateContactByID updates the contact whose ID value matches the id parameter of the request
// URL, updates the values specified in the JSON (and only those), and finally responds with the
// new version of the contact.
//
// A unique-constraint violation on update is not mapped to a 400 like it is
// on create; it surfaces as a storage error.
//
// Example REST API calls:
//
//	> curl http://localhost:8080/contact/56 --request "PUT" --include --header "Content-Type: application/json" --data '{"phone": "0819700815"}'
//	> curl http://localhost:8080/contact/56 --request "PUT" --include --header "Content-Type: application/json" --data '{"city": "Hamburg", "zip": "20095"}'
func updateContactByID(c *gin.Context) {
	id := c.Param("id")
	_, errConv := strconv.Atoi(id)
	if errConv != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "invalid id parameter"})
		return
	}

	var submitted model.ContactUpdate
	if errBind := c.BindJSON(&submitted); errBind != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": errBind.Error()})
		return
	}

	// Make sure the contact exists before touching it, so that an update
	// that happens to change nothing is still distinguishable from a
	// missing record.
	var existing []model.Contact
	if err := selectContactWhereId.Select(&existing, id); err != nil {
		log.Panicln(err)
	}
	if len(existing) == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "contact not found"})
		return
	}

	var args []interface{}
	sql := "UPDATE contacts SET "
	if submitted.Name != nil {
		args = append(args, submitted.Name)
		sql += "name=?, "
	}
	if submitted.Email != nil {
		args = append(args, submitted.Email)
		sql += "email=?, "
	}
	if submitted.Phone != nil {
		args = append(args, submitted.Phone)
		sql += "phone=?, "
	}
	if submitted.Address != nil {
		args = append(args, submitted.Address)
		sql += "address=?, "
	}
	if submitted.City != nil {
		args = append(args, submitted.City)
		sql += "city=?, "
	}
	if submitted.State != nil {
		args = append(args, submitted.State)
		sql += "state=?, "
	}
	if submitted.Zip != nil {
		args = append(args, submitted.Zip)
		sql += "zip=?, "
	}
	if submitted.Country != nil {
		args = append(args, submitted.Country)
		sql += "country=?, "
	}

	// It only makes sense to continue if we have at least one value to update.
	if len(args) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "no values to be updated"})
		return
	}

	sql = sql[:len(sql)-2]
	sql += " WHERE id=?"
	args = append(args, id)
	db.MustExec(sql, args...)

	// In the HTTP response, return the full contact after the update.
	var contacts []model.Contact
	if errSelect := selectContactWhereId.Select(&contacts, id); errSelect != nil {
		log.Panicln(errSelect)
	}
	if len(contacts) == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "contact not found"})
		return
	}
	c.IndentedJSON(http.StatusOK, contacts[0])
}

// deleteContactByID deletes the contact whose ID value matches the id parameter of the request
// URL from the database.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contact/56 --request "DELETE"
func deleteContactByID(c *gin.Context) {
	id := c.Param("id")
	_, errConv := strconv.Atoi(id)
	if errConv != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "invalid id parameter"})
		return
	}

	result, err := deleteContactWhereId.Exec(id)
	if err != nil {
		log.Panicln(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Panicln(err)
	}
	if rowsAffected == 1 {
		c.Status(http.StatusNoContent)
	} else {
		c.IndentedJSON(http.StatusNotFound, gin.H{"message": "contact not found"})
	}
}

// findTodos responds with the list of all todos as JSON.
func findTodos(c *gin.Context) {
	todos := []model.Todo{}
	err := db.Select(&todos, "SELECT * FROM todos")
	if err != nil {
		log.Panicln(err)
	}
	c.IndentedJSON(http.StatusOK, todos)
}

// createTodo inserts the todo specified in the request's JSON into the database. It responds
// with the full todo data including the newly assigned id. The done flag defaults to false.
//
// Example REST API call:
//
//	> curl http://localhost:8080/todo --request "POST" --include --header "Content-Type: application/json" --data '{"title": "Groceries", "task": "Buy milk and bread"}'
func createTodo(c *gin.Context) {
	var input model.TodoInput
	if err := c.BindJSON(&input); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	result, err := insertTodo.Exec(&input)
	if err != nil {
		if isDuplicateEntry(err) {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				gin.H{"message": "a todo with that title or task already exists"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			gin.H{"message": "an error occurred while creating the todo"})
		return
	}
	id, err := result.LastInsertId()
	if err != nil {
		log.Panicln(err)
	}

	var todos []model.Todo
	if err := selectTodoWhereId.Select(&todos, id); err != nil {
		log.Panicln(err)
	}
	if len(todos) == 0 {
		log.Panicln("todo vanished right after insert, id", id)
	}
	c.IndentedJSON(http.StatusCreated, todos[0])
}

// findTodoByID locates the todo whose ID value matches the id parameter of the request URL,
// then returns that todo as a response.
func findTodoByID(c *gin.Context) {
	id := c.Param("id")
	_, errConv := strconv.Atoi(id)
	if errConv != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "invalid id parameter"})
		return
	}

	var todos []model.Todo
	err := selectTodoWhereId.Select(&todos, id)
	if err != nil {
		log.Panicln(err)
	}
	if len(todos) == 0 {
		c.IndentedJSON(http.StatusNotFound, gin.H{"message": "todo not found"})
	} else {
		c.IndentedJSON(http.StatusOK, todos[0])
	}
}

// updateTodoByID updates the todo whose ID value matches the id parameter of the request URL,
// updates the values specified in the JSON (and only those), and finally responds with the new
// version of the todo.
func updateTodoByID(c *gin.Context) {
	id := c.Param("id")
	_, errConv := strconv.Atoi(id)
	if errConv != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "invalid id parameter"})
		return
	}

	var submitted model.TodoUpdate
	if errBind := c.BindJSON(&submitted); errBind != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": errBind.Error()})
		return
	}

	var existing []model.Todo
	if err := selectTodoWhereId.Select(&existing, id); err != nil {
		log.Panicln(err)
	}
	if len(existing) == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "todo not found"})
		return
	}

	var args []interface{}
	sql := "UPDATE todos SET "
	if submitted.Title != nil {
		args = append(args, submitted.Title)
		sql += "title=?, "
	}
	if submitted.Task != nil {
		args = append(args, submitted.Task)
		sql += "task=?, "
	}
	if submitted.Done != nil {
		args = append(args, submitted.Done)
		sql += "done=?, "
	}

	if len(args) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "no values to be updated"})
		return
	}

	sql = sql[:len(sql)-2]
	sql += " WHERE id=?"
	args = append(args, id)
	db.MustExec(sql, args...)

	var todos []model.Todo
	if errSelect := selectTodoWhereId.Select(&todos, id); errSelect != nil {
		log.Panicln(errSelect)
	}
	if len(todos) == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "todo not found"})
		return
	}
	c.IndentedJSON(http.StatusOK, todos[0])
}

// deleteTodoByID deletes the todo whose ID value matches the id parameter of the request URL
// from the database.
func deleteTodoByID(c *gin.Context) {
	id := c.Param("id")
	_, errConv := strconv.Atoi(id)
	if errConv != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "invalid id parameter"})
		return
	}

	result, err := deleteTodoWhereId.Exec(id)
	if err != nil {
		log.Panicln(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Panicln(err)
	}
	if rowsAffected == 1 {
		c.Status(http.StatusNoContent)
	} else {
		c.IndentedJSON(http.StatusNotFound, gin.H{"message": "todo not found"})
	}
}
