// Package redis provides the Redis backed OutcomeStore and a DistributedLocker
// used to serialize slot triggers across replicas.
package redis
