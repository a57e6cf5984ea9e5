package domain

// KeyPrefix namespaces service-owned counters in the shared Redis keyspace.
const KeyPrefix = "usersearch:"
