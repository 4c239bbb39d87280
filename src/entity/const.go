package entity

const VERSION = "0.3"

// DeployDirEnv names the local env var that points deploy at its remote checkout.
const DeployDirEnv = "WEBEID_DIR"
const EnvPrefix = "WEBEID"

const DefaultConfigFile = "./deploy.yml"
const DefaultConfigFileAlt = "./deploy.yaml"
const DefaultSSHPort = 22

const PassSeparator = " | "
const SPEW_DEPTH = 1

const CmdUname = "uname -a"
const CmdGitPull = "git pull"
const CmdBuildImage = "mvn clean package com.google.cloud.tools:jib-maven-plugin:dockerBuild"
const CmdComposeDown = "docker-compose down"
const CmdComposeUp = "docker-compose up -d"

// exit codes used when no remote exit status is available
const (
	ExitGeneric = 1
	ExitConfig  = 2
	ExitConnect = 255
)

const ResetColor = "\033[0m"

// Colors rotate per host so interleaved output stays readable.
var Colors = []string{
	"\033[32m", // green
	"\033[33m", // yellow
	"\033[36m", // cyan
	"\033[35m", // magenta
	"\033[31m", // red
	"\033[34m", // blue
}
