package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATE/DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// schema holds the CREATE TABLE statements for the relational backend.
// All statements are idempotent so EnsureSchema can run on every boot.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS habitacion (
		id_habitacion BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		numero_habitacion VARCHAR(16) NOT NULL UNIQUE,
		tipo VARCHAR(16) NOT NULL,
		capacidad INT NOT NULL,
		precio_noche BIGINT NOT NULL,
		estado VARCHAR(16) NOT NULL DEFAULT 'AVAILABLE'
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS cliente (
		id_cliente BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		nombre VARCHAR(100) NOT NULL,
		apellido VARCHAR(100) NOT NULL,
		rut_pasaporte VARCHAR(64) NOT NULL UNIQUE,
		email VARCHAR(255) NOT NULL UNIQUE,
		telefono BIGINT NULL,
		direccion VARCHAR(255) NULL,
		pais VARCHAR(100) NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS reserva (
		id_reserva BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		id_cliente BIGINT UNSIGNED NOT NULL,
		id_habitacion BIGINT UNSIGNED NOT NULL,
		fecha_reserva DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		fecha_checkin DATE NOT NULL,
		fecha_checkout DATE NOT NULL,
		cantidad_personas INT NOT NULL,
		estado_reserva VARCHAR(16) NOT NULL DEFAULT 'CONFIRMED',
		CONSTRAINT fk_reserva_cliente FOREIGN KEY (id_cliente) REFERENCES cliente (id_cliente),
		CONSTRAINT fk_reserva_habitacion FOREIGN KEY (id_habitacion) REFERENCES habitacion (id_habitacion),
		INDEX idx_reserva_habitacion_fechas (id_habitacion, fecha_checkin, fecha_checkout)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		nombre VARCHAR(100) NOT NULL DEFAULT '',
		apellido VARCHAR(100) NOT NULL DEFAULT '',
		role VARCHAR(32) NOT NULL DEFAULT 'cliente',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates the tables the relational adapter expects.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
