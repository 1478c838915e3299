// Package repository define las interfaces de repositorio de dominio.
//
// Estas interfaces son contratos independientes del almacenamiento
// subyacente. Las implementaciones concretas viven en internal/store/pg
// (PostgreSQL vía pgx) e internal/store/memory (tests y desarrollo).
//
//	┌──────────────────────────────────────────────┐
//	│   lockout / services / controllers           │
//	└──────────────────────────────────────────────┘
//	                     │
//	                     ▼
//	┌──────────────────────────────────────────────┐
//	│  domain/repository (interfaces)              │
//	│  AccountRepository, LoginAttemptRepository   │
//	└──────────────────────────────────────────────┘
//	             │                  │
//	             ▼                  ▼
//	      ┌─────────────┐    ┌─────────────┐
//	      │  store/pg   │    │ store/memory│
//	      └─────────────┘    └─────────────┘
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - Errores de dominio están en errors.go
package repository
