package common

// ServiceName identifies the relay in health checks and logs.
const ServiceName = "msgrelay"
